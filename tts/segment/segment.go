// Package segment turns free-form note text into an ordered sequence of
// speech-synthesis chunks, each carrying the exact substring to speak and
// the voice that should speak it. The pipeline normalizes quotation
// marks, resolves inline voice-code tokens, partitions the text into
// plain, quoted and emphasized segments, splits each segment into
// sentence units without breaking inside a quotation, and packs the
// units into chunks under a configured length limit.
//
// The engine is pure and total: malformed input — unbalanced quotes or
// asterisks, unknown voice codes, empty text — degrades gracefully and
// never produces an error. An empty chunk list means there was nothing
// to speak.
package segment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/notevox/notevox/tts"
)

// paragraphBreak matches a run of whitespace containing at least two
// line breaks: the blank-line boundary between paragraphs.
var paragraphBreak = regexp.MustCompile(`[ \t\r]*(?:\n[ \t\r]*){2,}`)

// Engine runs the segmentation and chunking pipeline. It holds an
// immutable configuration snapshot and a voice lookup table; each call
// to SegmentAndChunk is independent and side-effect free.
type Engine struct {
	maxChunkLength    int
	respectParagraphs bool
	useDistinctVoices bool
	defaultVoice      string
	quotedVoice       string
	emphasisVoice     string

	voices tts.VoiceResolver
}

// New creates an engine from a validated configuration and a voice
// table. The configuration loader rejects a non-positive chunk length
// before it gets here; New guards against callers that skip validation.
func New(cfg tts.Config, voices tts.VoiceResolver) (*Engine, error) {
	if cfg.MaxChunkLength <= 0 {
		return nil, fmt.Errorf("%w: got %d", tts.ErrInvalidChunkLength, cfg.MaxChunkLength)
	}
	if voices == nil {
		return nil, fmt.Errorf("%w: voice resolver is required", tts.ErrInvalidConfig)
	}

	return &Engine{
		maxChunkLength:    cfg.MaxChunkLength,
		respectParagraphs: cfg.RespectParagraphs,
		useDistinctVoices: cfg.UseDistinctVoices,
		defaultVoice:      cfg.DefaultVoice,
		quotedVoice:       cfg.QuotedVoice,
		emphasisVoice:     cfg.EmphasisVoice,
		voices:            voices,
	}, nil
}

// SegmentAndChunk converts one text into its ordered chunk sequence.
// With paragraph-respecting mode enabled the text is first split on
// blank-line boundaries and the pipeline runs independently per
// paragraph, so no chunk ever spans a paragraph break.
func (e *Engine) SegmentAndChunk(text string) []tts.Chunk {
	paragraphs := []string{text}
	if e.respectParagraphs {
		paragraphs = splitParagraphs(text)
	}

	var chunks []tts.Chunk
	for _, para := range paragraphs {
		chunks = append(chunks, e.chunkParagraph(para)...)
	}
	return chunks
}

// chunkParagraph runs the full pipeline over one paragraph. The packer
// state is scoped to the paragraph, so nothing carries across paragraph
// boundaries.
func (e *Engine) chunkParagraph(para string) []tts.Chunk {
	if strings.TrimSpace(para) == "" {
		return nil
	}

	normalized := NormalizeQuotes(para)
	cleaned, assignments := resolveVoiceCodes(normalized, e.voices)
	segments := segmentText(cleaned, assignments)

	p := newPacker(e.maxChunkLength)
	for _, seg := range segments {
		p.add(splitSentences(seg.Text), e.voiceFor(seg))
	}
	return p.chunks
}

// voiceFor resolves the voice a segment speaks with. An inline voice
// code always wins; otherwise quoted and emphasized segments get their
// configured voices only when distinct voices are enabled.
func (e *Engine) voiceFor(seg Segment) string {
	if seg.Voice != "" {
		return seg.Voice
	}
	if !e.useDistinctVoices {
		return e.defaultVoice
	}
	switch seg.Kind {
	case KindQuoted:
		return e.quotedVoice
	case KindEmphasized:
		return e.emphasisVoice
	default:
		return e.defaultVoice
	}
}

// splitParagraphs splits text on blank-line boundaries, dropping parts
// that contain no speakable content.
func splitParagraphs(text string) []string {
	parts := paragraphBreak.Split(text, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			paragraphs = append(paragraphs, part)
		}
	}
	return paragraphs
}

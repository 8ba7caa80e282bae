package scraper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gherardi/geop-sync/internal/model"
)

// The portal renders each session as a small stack of text lines inside the
// event element. Joined with " - " they follow a fixed layout:
//
//	09:00 - 10:30 - Algorithms - Dr. Rossi - Aula: A1
//
// The offsets below mirror that layout and break loudly if it changes.
const (
	fieldSeparator  = " - "
	classroomMarker = " - Aula: "

	// timeSegmentLen covers "HH:MM - HH:MM"; infoOffset skips it plus the
	// following separator.
	timeSegmentLen = 13
	infoOffset     = 16
	minBlockLen    = 16
)

// noiseTokens are literal markers the portal mixes into event text.
var noiseTokens = []string{"<br>", "[Prima Lezione]", "[Esame]"}

// Parse failure kinds, one per way a raw block can miss the layout.
var (
	ErrBlockTooShort    = errors.New("event text too short to parse")
	ErrBadTimeSegment   = errors.New("malformed time segment")
	ErrMissingClassroom = errors.New("no classroom marker in event text")
	ErrMissingProfessor = errors.New("no professor segment in event text")
)

// ParseBlock turns the raw text of one event element into a Lecture. The
// returned lecture has no date; the caller assigns it from the week context,
// since the element itself does not carry one.
func ParseBlock(raw string) (model.Lecture, error) {
	text := stripNoise(strings.ReplaceAll(raw, "\n", fieldSeparator))

	if len(text) < minBlockLen {
		return model.Lecture{}, fmt.Errorf("%w: %q", ErrBlockTooShort, text)
	}

	times := strings.Split(text[:timeSegmentLen], fieldSeparator)
	if len(times) != 2 {
		return model.Lecture{}, fmt.Errorf("%w: %q", ErrBadTimeSegment, text[:timeSegmentLen])
	}

	info := text[infoOffset:]
	marker := strings.Index(info, classroomMarker)
	if marker < 0 {
		return model.Lecture{}, fmt.Errorf("%w: %q", ErrMissingClassroom, info)
	}

	subjectAndProfessor := info[:marker]
	classroom := info[marker+len(classroomMarker):]

	// The professor is the last separator-delimited segment; everything
	// before it is the subject, which may itself contain the separator.
	parts := strings.Split(subjectAndProfessor, fieldSeparator)
	if len(parts) < 2 {
		return model.Lecture{}, fmt.Errorf("%w: %q", ErrMissingProfessor, subjectAndProfessor)
	}

	return model.Lecture{
		StartTime: strings.TrimSpace(times[0]),
		EndTime:   strings.TrimSpace(times[1]),
		Subject:   stripNoise(strings.Join(parts[:len(parts)-1], fieldSeparator)),
		Professor: stripNoise(parts[len(parts)-1]),
		Classroom: strings.TrimSpace(classroom),
	}, nil
}

// stripNoise removes the portal's literal noise tokens and trims whitespace.
func stripNoise(s string) string {
	for _, tok := range noiseTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	return strings.TrimSpace(s)
}

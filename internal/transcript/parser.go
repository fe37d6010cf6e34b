// Package transcript parses exported WhatsApp chat text into senders and
// timestamped messages.
package transcript

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"time"
)

// TimestampLayout matches the export header, e.g. "12/31/20, 10:00 PM".
// Month, day and hour may be written with or without a leading zero.
const TimestampLayout = "1/2/06, 3:04 PM"

// ISOLayout is the rendering used for parsed timestamps.
const ISOLayout = "2006-01-02T15:04:05"

const (
	headerSep = " - "
	senderSep = ": "

	readBufferSize = 64 * 1024
	maxLineSize    = 1024 * 1024
)

// Entry is one successfully parsed transcript line.
type Entry struct {
	Sender    string
	Timestamp time.Time
	Text      string
}

// ISOTimestamp renders the timestamp without zone, e.g. 2020-12-31T22:00:00.
func (e Entry) ISOTimestamp() string {
	return e.Timestamp.Format(ISOLayout)
}

// Result holds the distinct participants (first-seen order) and the parsed
// messages in line order.
type Result struct {
	Participants []string
	Messages     []Entry
}

// ParseLine parses a single line of the form
// "<date>, <time> - <sender>: <message>". Lines that do not match are
// reported with ok=false; they are not errors.
func ParseLine(line string) (Entry, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.Contains(line, headerSep) || !strings.Contains(line, senderSep) {
		return Entry{}, false
	}

	tsPart, rest, _ := strings.Cut(line, headerSep)
	sender, text, found := strings.Cut(rest, senderSep)
	if !found {
		return Entry{}, false
	}

	ts, err := time.Parse(TimestampLayout, tsPart)
	if err != nil {
		return Entry{}, false
	}

	sender = strings.TrimSpace(sender)
	if sender == "" {
		return Entry{}, false
	}

	return Entry{
		Sender:    sender,
		Timestamp: ts,
		Text:      strings.TrimSpace(text),
	}, true
}

// Parse reads a transcript line by line. Continuation lines of wrapped
// messages are not reassembled and are dropped like any other malformed line,
// as are lines longer than maxLineSize. Only read failures are returned as
// errors.
func Parse(r io.Reader) (*Result, error) {
	br := bufio.NewReaderSize(r, readBufferSize)

	result := &Result{}
	seen := make(map[string]struct{})

	var (
		line    []byte
		tooLong bool
	)
	for {
		frag, err := br.ReadSlice('\n')
		if err != nil && !errors.Is(err, bufio.ErrBufferFull) && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if !tooLong {
			if len(line)+len(frag) > maxLineSize {
				tooLong = true
				line = line[:0]
			} else {
				line = append(line, frag...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		if !tooLong {
			if entry, ok := ParseLine(string(line)); ok {
				if _, dup := seen[entry.Sender]; !dup {
					seen[entry.Sender] = struct{}{}
					result.Participants = append(result.Participants, entry.Sender)
				}
				result.Messages = append(result.Messages, entry)
			}
		}
		line, tooLong = line[:0], false

		if err != nil {
			return result, nil
		}
	}
}

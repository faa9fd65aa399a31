// Package scanjson decodes scanner JSON output into a single scan result.
//
// The scanner prints either one result object or, for multi-module projects,
// an array with one object per module. Output for large dependency trees can
// be big, so decoding pulls tokens from a stream and skips anything it does
// not need without materializing it.
package scanjson

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/ochairo/scangate/internal/domain/entities"
)

// Decoding failures
var (
	ErrMalformedEncoding = entities.ErrMalformedEncoding
	ErrMalformedResult   = entities.ErrMalformedResult
)

const (
	bufferSize      = 32 * 1024
	moduleSeparator = ". "
)

// Decode reads a result object or an array of per-module result objects.
// It returns nil, nil for a nil reader, blank input or a JSON null.
func Decode(r io.Reader) (*entities.ScanResult, error) {
	if r == nil {
		return nil, nil
	}

	br := bufio.NewReaderSize(transform.NewReader(r, encoding.UTF8Validator), bufferSize)
	blank, err := onlyWhitespace(br)
	if err != nil {
		return nil, classify(err)
	}
	if blank {
		return nil, nil
	}

	iter := jsoniter.Parse(jsoniter.ConfigDefault, br, bufferSize)

	var result *entities.ScanResult
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		module := decodeModule(iter)
		result = &module
	case jsoniter.ArrayValue:
		agg := newAggregator()
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			if it.WhatIsNext() != jsoniter.ObjectValue {
				// Non-object entries carry no module result
				it.Skip()
				return it.Error == nil
			}
			agg.add(decodeModule(it))
			return it.Error == nil
		})
		folded := agg.result()
		result = &folded
	case jsoniter.NilValue:
		iter.Skip()
		if err := expectEnd(iter); err != nil {
			return nil, err
		}
		return nil, nil
	default:
		if iter.Error != nil && iter.Error != io.EOF {
			return nil, classify(iter.Error)
		}
		return nil, fmt.Errorf("%w: top-level value is neither object nor array", ErrMalformedResult)
	}

	if err := expectEnd(iter); err != nil {
		return nil, err
	}
	return result, nil
}

// expectEnd fails unless only whitespace follows the top-level value
func expectEnd(iter *jsoniter.Iterator) error {
	if iter.Error != nil && iter.Error != io.EOF {
		return classify(iter.Error)
	}
	next := iter.WhatIsNext()
	if iter.Error != nil && iter.Error != io.EOF {
		return classify(iter.Error)
	}
	if next != jsoniter.InvalidValue || iter.Error != io.EOF {
		return fmt.Errorf("%w: unexpected content after the top-level value", ErrMalformedResult)
	}
	return nil
}

// DecodeString is Decode over an in-memory document
func DecodeString(raw string) (*entities.ScanResult, error) {
	return Decode(strings.NewReader(raw))
}

// DecodeFile decodes the scanner output captured at path
func DecodeFile(path string) (*entities.ScanResult, error) {
	//nolint:gosec // G304: path is the report file written by this run
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scanner output: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	return Decode(f)
}

// decodeModule reads the known fields of one result object and skips the rest
func decodeModule(iter *jsoniter.Iterator) entities.ScanResult {
	module := entities.ScanResult{OK: true}

	iter.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
		switch field {
		case "ok":
			if it.WhatIsNext() == jsoniter.BoolValue {
				module.OK = it.ReadBool()
			} else {
				it.Skip()
			}
		case "error":
			if it.WhatIsNext() == jsoniter.StringValue {
				module.Error = it.ReadString()
			} else {
				it.Skip()
			}
		case "uniqueCount":
			module.UniqueCount = readCount(it)
		case "dependencyCount":
			module.DependencyCount = readCount(it)
		default:
			it.Skip()
		}
		return it.Error == nil
	})

	return module
}

func readCount(it *jsoniter.Iterator) int {
	if it.WhatIsNext() != jsoniter.NumberValue {
		it.Skip()
		return 0
	}
	return clampCount(string(it.ReadNumber()))
}

// clampCount maps a JSON number onto [0, math.MaxInt]; fractions are truncated
func clampCount(raw string) int {
	n, err := strconv.ParseInt(raw, 10, 0)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		if n < 0 {
			return 0
		}
		return int(n)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	switch {
	case math.IsNaN(f), f <= 0:
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	}
	return int(f)
}

// onlyWhitespace consumes leading whitespace and reports whether nothing else follows
func onlyWhitespace(br *bufio.Reader) (bool, error) {
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return false, br.UnreadByte()
	}
}

func classify(err error) error {
	if errors.Is(err, encoding.ErrInvalidUTF8) {
		return fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return fmt.Errorf("%w: %v", ErrMalformedResult, err)
}

// FileDecoder decodes result files for the scan pipeline
type FileDecoder struct{}

// DecodeFile decodes the result file at path
func (FileDecoder) DecodeFile(path string) (*entities.ScanResult, error) {
	return DecodeFile(path)
}

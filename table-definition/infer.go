package tabledefinition

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
	"github.com/relloyd/csv2athena/constants"
	"github.com/relloyd/csv2athena/helper"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type Delimiter string

const (
	DelimiterPipe  Delimiter = "|"
	DelimiterComma Delimiter = ","
)

var (
	ErrEmptyHeader   = errors.New("CSV header line is empty")
	ErrHeaderTooLong = errors.New("CSV header line is too long")
	reColumnRun      = regexp.MustCompile("[^a-z0-9-]+")
)

// InferredSchema is what a CSV header line tells us about the file.
type InferredSchema struct {
	Delimiter Delimiter
	Columns   []string // sanitized names, in header order
}

// InferSchema picks the delimiter with the most occurrences on the header line, comma winning ties,
// then splits the header by it and sanitizes each field into a column name.
// Duplicate names are returned as they are.
func InferSchema(header string) (InferredSchema, error) {
	if strings.TrimSpace(header) == "" {
		return InferredSchema{}, ErrEmptyHeader
	}
	d := DelimiterComma
	if strings.Count(header, string(DelimiterPipe)) > strings.Count(header, string(DelimiterComma)) {
		d = DelimiterPipe
	}
	fields := strings.Split(header, string(d))
	s := InferredSchema{Delimiter: d, Columns: make([]string, len(fields))}
	for i, f := range fields {
		s.Columns[i] = SanitizeColumnName(f)
	}
	return s, nil
}

// SanitizeColumnName trims and lower-cases s, removes one leading and one trailing double quote,
// then replaces each run of characters outside [a-z0-9-] with a single dash.
// Applying it to its own output changes nothing.
func SanitizeColumnName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return helper.CollapseRuns(reColumnRun, s, "-")
}

// ColumnDefinitions renders each column as `name` string.
func (s InferredSchema) ColumnDefinitions() []string {
	defs := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		defs[i] = helper.BacktickQuote(c) + " " + constants.ColumnDataType
	}
	return defs
}

// SerdeProperties returns the OpenCSVSerde properties for the delimiter, in DDL order.
func (s InferredSchema) SerdeProperties() *ordered_map.OrderedMap {
	om := ordered_map.NewOrderedMap()
	if s.Delimiter == DelimiterPipe {
		om.Set("separatorChar", string(DelimiterPipe))
		om.Set("serialization.format", string(DelimiterComma))
		om.Set("field.delim", string(DelimiterPipe))
	} else {
		om.Set("serialization.format", string(DelimiterComma))
		om.Set("field.delim", string(DelimiterComma))
	}
	return om
}

// DuplicateColumns returns the sanitized names that occur more than once, in first-seen order.
func (s InferredSchema) DuplicateColumns() []string {
	seen := make(map[string]int, len(s.Columns))
	var dups []string
	for _, c := range s.Columns {
		seen[c]++
		if seen[c] == 2 {
			dups = append(dups, c)
		}
	}
	return dups
}

// ReadHeader returns the first line of r without its line terminator.
// A byte order mark is dropped and UTF-16 input (with BOM) is decoded to UTF-8.
// A line longer than constants.HeaderMaxBytes returns ErrHeaderTooLong.
func ReadHeader(r io.Reader) (string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(transform.Nop))
	// One byte over the limit tells a line of exactly HeaderMaxBytes from a longer one.
	br := bufio.NewReader(io.LimitReader(decoded, constants.HeaderMaxBytes+1))
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.Wrap(err, "unable to read CSV header line")
	}
	if err == io.EOF && len(strings.TrimSuffix(line, "\r")) > constants.HeaderMaxBytes {
		return "", errors.Wrapf(ErrHeaderTooLong, "no line break in the first %d bytes", constants.HeaderMaxBytes)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

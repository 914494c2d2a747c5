package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

/*
makeCSV builds a CSV document in-memory with the given header and rows.
It uses encoding/csv to ensure proper quoting and escaping.
*/
func makeCSV(delim rune, header []string, rows [][]string) []byte {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	w.Comma = delim
	if header != nil {
		_ = w.Write(header)
	}
	for _, r := range rows {
		_ = w.Write(r)
	}
	w.Flush()
	return b.Bytes()
}

/*
TestChunkReader_Chunks verifies batch sizing: 5 rows read with n=2 give
batches of 2, 2 and 1 followed by io.EOF, with source line numbers.
*/
func TestChunkReader_Chunks(t *testing.T) {
	data := makeCSV(',', []string{"id", "v"}, [][]string{
		{"1", "a"}, {"2", "b"}, {"3", "c"}, {"4", "d"}, {"5", "e"},
	})
	r, err := NewChunkReader(bytes.NewReader(data), Options{})
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	ctx := context.Background()

	var sizes []int
	var lines []int
	for {
		b, err := r.Next(ctx, 2)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		sizes = append(sizes, b.Len())
		for _, row := range b.Rows {
			lines = append(lines, row.Line)
		}
	}
	if len(sizes) != 3 || sizes[0] != 2 || sizes[1] != 2 || sizes[2] != 1 {
		t.Fatalf("batch sizes = %v, want [2 2 1]", sizes)
	}
	if lines[0] != 2 || lines[4] != 6 {
		t.Fatalf("lines = %v, want 2..6", lines)
	}
	if _, err := r.Next(ctx, 2); !errors.Is(err, io.EOF) {
		t.Fatalf("Next after EOF = %v, want io.EOF", err)
	}
}

/*
TestChunkReader_SelectColumns verifies case-insensitive column selection in
file order, header casing retained, and empty cells as nil.
*/
func TestChunkReader_SelectColumns(t *testing.T) {
	data := makeCSV(',', []string{"ID", "junk", "Annual_Inc", "int_rate"}, [][]string{
		{"1", "x", "", "13.5%"},
	})
	r, err := NewChunkReader(bytes.NewReader(data), Options{
		Columns: []string{"int_rate", "annual_inc", "id"},
	})
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	want := []string{"ID", "Annual_Inc", "int_rate"}
	if got := r.Columns(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Columns = %v, want %v", got, want)
	}
	b, err := r.Next(context.Background(), 10)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	v := b.Rows[0].V
	if v[0] != "1" || v[1] != nil || v[2] != "13.5%" {
		t.Fatalf("row = %#v", v)
	}
}

func TestChunkReader_MissingColumn(t *testing.T) {
	data := makeCSV(',', []string{"id"}, nil)
	_, err := NewChunkReader(bytes.NewReader(data), Options{Columns: []string{"id", "grade"}})
	if err == nil || !strings.Contains(err.Error(), "grade") {
		t.Fatalf("err = %v, want missing grade", err)
	}
}

func TestChunkReader_EmptyInput(t *testing.T) {
	if _, err := NewChunkReader(strings.NewReader(""), Options{}); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

/*
TestChunkReader_RaggedAndOptions covers short rows (padded with nil), a
custom delimiter, TrimSpace and a UTF-8 BOM on the header.
*/
func TestChunkReader_RaggedAndOptions(t *testing.T) {
	in := "\uFEFFid;name;state\n1; Ann ;CA\n2;Bob\n"
	r, err := NewChunkReader(strings.NewReader(in), Options{Comma: ';', TrimSpace: true})
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	if r.Columns()[0] != "id" {
		t.Fatalf("BOM not stripped: %q", r.Columns()[0])
	}
	b, err := r.Next(context.Background(), 10)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if b.Len() != 2 {
		t.Fatalf("rows = %d, want 2", b.Len())
	}
	if b.Rows[0].V[1] != "Ann" {
		t.Fatalf("trim: %#v", b.Rows[0].V[1])
	}
	if b.Rows[1].V[2] != nil {
		t.Fatalf("short row not padded: %#v", b.Rows[1].V)
	}
}

// TestChunkReader_Latin1 verifies non-UTF-8 input is decoded before parsing.
func TestChunkReader_Latin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("id,emp_length\n1,años\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	r, err := NewChunkReader(strings.NewReader(raw), Options{Encoding: "latin1"})
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	b, err := r.Next(context.Background(), 1)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if b.Rows[0].V[1] != "años" {
		t.Fatalf("decoded = %q", b.Rows[0].V[1])
	}
}

func TestChunkReader_UnknownEncoding(t *testing.T) {
	if _, err := NewChunkReader(strings.NewReader("a\n"), Options{Encoding: "klingon"}); err == nil {
		t.Fatalf("expected unknown encoding error")
	}
}

func TestChunkReader_Canceled(t *testing.T) {
	r, err := NewChunkReader(strings.NewReader("a\n1\n"), Options{})
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Next(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCleanHeader(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "bom on first", in: []string{"\uFEFFid", "annual_inc"}, want: []string{"id", "annual_inc"}},
		{name: "padded names", in: []string{" id", "int_rate\t", "grade"}, want: []string{"id", "int_rate", "grade"}},
		{name: "bom only stripped from first", in: []string{"id", "\uFEFFterm"}, want: []string{"id", "\uFEFFterm"}},
		{name: "empty", in: nil, want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := append([]string(nil), tc.in...)
			got := cleanHeader(in)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("cleanHeader(%q) = %q, want %q", tc.in, got, tc.want)
			}
			if !slices.Equal(in, tc.in) {
				t.Fatalf("input mutated: %q", in)
			}
		})
	}
}

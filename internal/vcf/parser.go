package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parser reads annotated records from a VCF file. Header and comment lines
// are collected but not required.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	header     []string
}

// NewParser creates a new parser for the given file.
// Supports both plain VCF and gzipped VCF (.vcf.gz) files.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) *Parser {
	return &Parser{reader: bufio.NewReader(r)}
}

// Next reads the next data record, skipping blank and comment lines.
// Returns nil, nil when there are no more records. A malformed line yields
// a *ParseError; the parser stays usable and the caller may continue.
func (p *Parser) Next() (*Record, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		if err == io.EOF && line == "" {
			return nil, nil
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			p.header = append(p.header, line)
			continue
		}

		return ParseRecord(line, p.lineNumber-1)
	}
}

// ParseRecord parses a single data line. index is the 0-based line index
// used for error reporting.
func ParseRecord(line string, index int) (*Record, error) {
	fields := strings.Split(strings.TrimSpace(line), "\t")
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    index,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    index,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	return &Record{
		Line:  index,
		Chrom: fields[0],
		Pos:   pos,
		ID:    fields[2],
		Ref:   fields[3],
		Alt:   fields[4],
		Info:  fields[7],
	}, nil
}

// Header returns the header and comment lines seen so far.
func (p *Parser) Header() []string {
	return p.header
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}

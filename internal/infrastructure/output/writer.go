// Package output streams detection results to CSV or JSON files. Hits are
// written in chunks as structures finish; nothing buffers the whole run.
// Display rounding happens here, the in-memory records keep full precision.
package output

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/turtacn/xpid/pkg/errors"
	"github.com/turtacn/xpid/pkg/types/interaction"
)

// Format selects the result file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates the CLI form of a format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	}
	return "", errors.Newf(errors.CodeValidation, "file type must be csv or json, got %q", s)
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string { return string(f) }

// Writer receives hit chunks and finalizes the underlying encoding on
// Close. Implementations are not safe for concurrent use; the batch runner
// serializes writes.
type Writer interface {
	Write(hits []interaction.Hit) error
	Close() error
}

// NewWriter wraps w with the chosen encoding. With verbose set the full
// column schema is emitted, otherwise the compact subset.
func NewWriter(w io.Writer, format Format, verbose bool) Writer {
	if format == FormatJSON {
		return &jsonWriter{w: w, verbose: verbose}
	}
	return &csvWriter{w: csv.NewWriter(w), verbose: verbose}
}

// CreateFile opens path for writing, creating parent directories, and
// returns a Writer over it together with the file handle for closing.
func CreateFile(path string, format Format, verbose bool) (Writer, *os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, errors.Wrap(err, errors.CodeOutput, "creating output directory "+dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeOutput, "creating result file "+path)
	}
	return NewWriter(f, format, verbose), f, nil
}

// FilePath assembles the result file location: dir/name.ext, with dir
// defaulting to the working directory.
func FilePath(dir, name string, format Format) string {
	return filepath.Join(dir, name+"."+format.Ext())
}

type csvWriter struct {
	w           *csv.Writer
	verbose     bool
	wroteHeader bool
}

func (c *csvWriter) Write(hits []interaction.Hit) error {
	if !c.wroteHeader {
		header := interaction.SimpleColumns
		if c.verbose {
			header = interaction.Columns
		}
		if err := c.w.Write(header); err != nil {
			return errors.Wrap(err, errors.CodeOutput, "writing CSV header")
		}
		c.wroteHeader = true
	}
	for _, h := range hits {
		if err := c.w.Write(h.CSVRow(!c.verbose)); err != nil {
			return errors.Wrap(err, errors.CodeOutput, "writing CSV row")
		}
	}
	return c.flush()
}

func (c *csvWriter) Close() error {
	if !c.wroteHeader {
		// A run with zero hits still gets a header-only file.
		if err := c.Write(nil); err != nil {
			return err
		}
	}
	return c.flush()
}

func (c *csvWriter) flush() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return errors.Wrap(err, errors.CodeOutput, "flushing CSV output")
	}
	return nil
}

// jsonWriter emits one JSON array, element by element.
type jsonWriter struct {
	w       io.Writer
	verbose bool
	opened  bool
	first   bool
}

func (j *jsonWriter) Write(hits []interaction.Hit) error {
	if !j.opened {
		if _, err := io.WriteString(j.w, "["); err != nil {
			return errors.Wrap(err, errors.CodeOutput, "writing JSON output")
		}
		j.opened = true
		j.first = true
	}
	for _, h := range hits {
		var payload any = h.Rounded()
		if !j.verbose {
			payload = h.Simple()
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, errors.CodeOutput, "encoding result record")
		}
		sep := ",\n"
		if j.first {
			sep = "\n"
			j.first = false
		}
		if _, err := io.WriteString(j.w, sep+string(data)); err != nil {
			return errors.Wrap(err, errors.CodeOutput, "writing JSON output")
		}
	}
	return nil
}

func (j *jsonWriter) Close() error {
	closing := "\n]\n"
	if !j.opened {
		closing = "[]\n"
	}
	if _, err := io.WriteString(j.w, closing); err != nil {
		return errors.Wrap(err, errors.CodeOutput, "writing JSON output")
	}
	return nil
}

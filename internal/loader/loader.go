// Package loader reads the line-oriented exam data format and populates a
// fresh session: an 11-line preamble, a Proctor section and a Student
// section. Lines may carry a trailing ";;" comment which is stripped before
// parsing.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/campus-ops/exam-session-service/internal/events"
	"github.com/campus-ops/exam-session-service/internal/models"
	"github.com/campus-ops/exam-session-service/internal/session"
	"github.com/campus-ops/exam-session-service/internal/validator"
)

// ErrMalformedInput covers fatal parse failures: a missing or non-numeric
// preamble field, a missing section marker, or an unreadable file. Malformed
// roster lines are not fatal; they are skipped with a warning.
var ErrMalformedInput = errors.New("malformed exam data")

const timeLayout = "2006-01-02T15:04:05"

// Loader parses exam data files into sessions.
type Loader struct {
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
}

func New(logger *slog.Logger, v *validator.Validator, publisher events.Publisher) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if v == nil {
		v = validator.New()
	}
	return &Loader{logger: logger, validator: v, publisher: publisher}
}

// LoadFile opens and parses the exam data file at path. On any fatal error
// the returned session is nil and the caller must not proceed.
func (l *Loader) LoadFile(path string) (*session.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s: %w", ErrMalformedInput, path, err)
	}
	defer f.Close()

	s, err := l.Load(f, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Load parses exam data from r. sourcePath is recorded on the session for
// reporting only.
func (l *Loader) Load(r io.Reader, sourcePath string) (*session.Session, error) {
	sc := bufio.NewScanner(r)

	meta, err := l.parsePreamble(sc)
	if err != nil {
		return nil, err
	}
	meta.SourcePath = sourcePath

	if errs := l.validator.ValidateExamMeta(meta); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, errs)
	}

	s := session.New(meta, l.logger, l.publisher)
	if err := l.parseRoster(sc, s); err != nil {
		return nil, err
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read failed: %w", ErrMalformedInput, err)
	}

	l.logger.Info("Exam data loaded",
		"source", sourcePath,
		"course", meta.CourseNum,
		"room", meta.RoomNum,
		"students", len(s.Snapshot().Students),
		"proctors", len(s.Snapshot().Proctors))
	return s, nil
}

// parsePreamble reads the ordered configuration block. Every field is
// required; failures here are fatal.
func (l *Loader) parsePreamble(sc *bufio.Scanner) (session.Meta, error) {
	var meta session.Meta
	var err error

	if meta.TermNum, err = nextInt(sc, "term number"); err != nil {
		return meta, err
	}
	if meta.TermName, err = nextValue(sc, "term name"); err != nil {
		return meta, err
	}
	if meta.CourseNum, err = nextValue(sc, "course number"); err != nil {
		return meta, err
	}
	if meta.RoomNum, err = nextValue(sc, "room number"); err != nil {
		return meta, err
	}
	if meta.Capacity, err = nextInt(sc, "capacity"); err != nil {
		return meta, err
	}
	if meta.MaxRow, err = nextInt(sc, "max rows"); err != nil {
		return meta, err
	}
	if meta.MaxCol, err = nextInt(sc, "max columns"); err != nil {
		return meta, err
	}
	if meta.NumVersions, err = nextInt(sc, "number of versions"); err != nil {
		return meta, err
	}

	codesLine, err := nextValue(sc, "version codes")
	if err != nil {
		return meta, err
	}
	for _, tok := range strings.Split(codesLine, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		code, err := strconv.Atoi(tok)
		if err != nil {
			return meta, fmt.Errorf("%w: version code %q is not numeric", ErrMalformedInput, tok)
		}
		meta.VersionCodes = append(meta.VersionCodes, code)
	}

	if meta.StartTime, err = nextTime(sc, "start time"); err != nil {
		return meta, err
	}
	if meta.EndTime, err = nextTime(sc, "end time"); err != nil {
		return meta, err
	}
	return meta, nil
}

// parseRoster reads the Proctor section up to the Student marker, then
// student lines until EOF. Malformed roster lines are skipped with a
// warning.
func (l *Loader) parseRoster(sc *bufio.Scanner, s *session.Session) error {
	marker, err := nextValue(sc, "Proctor section")
	if err != nil {
		return err
	}
	if marker != "Proctor" {
		return fmt.Errorf("%w: expected Proctor section, got %q", ErrMalformedInput, marker)
	}

	inStudents := false
	for sc.Scan() {
		value := stripComment(sc.Text())
		if value == "" {
			continue
		}
		if !inStudents && value == "Student" {
			inStudents = true
			continue
		}

		fields := splitFields(value)
		if inStudents {
			st, err := parseStudent(fields)
			if err != nil {
				l.logger.Warn("Skipping malformed student line", "line", sc.Text(), "error", err)
				continue
			}
			s.AddStudent(st)
			continue
		}

		p, err := parseProctor(fields)
		if err != nil {
			l.logger.Warn("Skipping malformed proctor line", "line", sc.Text(), "error", err)
			continue
		}
		s.AddProctor(p)
	}
	return nil
}

func parseStudent(fields []string) (models.Student, error) {
	if len(fields) != 4 {
		return models.Student{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return models.Student{}, fmt.Errorf("student id %q is not numeric", fields[0])
	}
	if id < 0 {
		return models.Student{}, fmt.Errorf("student id %d is negative", id)
	}
	return models.NewStudent(id, fields[1], fields[2], fields[3]), nil
}

func parseProctor(fields []string) (models.Proctor, error) {
	if len(fields) != 5 {
		return models.Proctor{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return models.Proctor{}, fmt.Errorf("proctor id %q is not numeric", fields[0])
	}
	if id < 0 {
		return models.Proctor{}, fmt.Errorf("proctor id %d is negative", id)
	}
	role := models.ProctorRole(fields[4])
	if !role.Valid() {
		return models.Proctor{}, fmt.Errorf("unknown proctor role %q", fields[4])
	}
	return models.Proctor{
		Identity: models.Identity{ID: id, Name: fields[1], DateOfBirth: fields[2], PhotoRef: fields[3]},
		Role:     role,
	}, nil
}

func nextValue(sc *bufio.Scanner, field string) (string, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("%w: reading %s: %w", ErrMalformedInput, field, err)
		}
		return "", fmt.Errorf("%w: missing %s", ErrMalformedInput, field)
	}
	return stripComment(sc.Text()), nil
}

func nextInt(sc *bufio.Scanner, field string) (int, error) {
	value, err := nextValue(sc, field)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not numeric", ErrMalformedInput, field, value)
	}
	return n, nil
}

func nextTime(sc *bufio.Scanner, field string) (time.Time, error) {
	value, err := nextValue(sc, field)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(timeLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q: %w", ErrMalformedInput, field, value, err)
	}
	return t, nil
}

// stripComment drops a trailing ";;"-delimited comment and surrounding
// whitespace.
func stripComment(line string) string {
	if idx := strings.Index(line, ";;"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

func splitFields(value string) []string {
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"wynn-raid-parser/internal/ports"
)

// StdinPath - путь, при котором данные читаются из стандартного ввода.
const StdinPath = "-"

// ErrEmptyPath возвращается, если путь к файлу не указан.
var ErrEmptyPath = errors.New("file path is not set")

// CliSource реализует интерфейс DataSource для чтения журнала чата из файла,
// указанного в командной строке, или из stdin.
type CliSource struct {
	filePath string
	stdin    io.Reader
}

// NewCliSource создает новый экземпляр CliSource.
func NewCliSource(filePath string) ports.DataSource {
	return &CliSource{filePath: filePath, stdin: os.Stdin}
}

// Fetch читает файл по указанному пути и возвращает его содержимое.
func (s *CliSource) Fetch() ([]byte, error) {
	if s.filePath == "" {
		return nil, ErrEmptyPath
	}

	if s.filePath == StdinPath {
		data, err := io.ReadAll(s.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", s.filePath, err)
	}

	return data, nil
}

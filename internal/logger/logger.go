package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New cria um logger JSON no stdout com o nível informado e o registra como padrão.
func New(level string) *slog.Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter é como New, mas escreve em w.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	l := slog.New(handler).With("servico", "afiliados-api")
	slog.SetDefault(l)
	return l
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Descartar devolve um logger que não escreve nada (testes).
func Descartar() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

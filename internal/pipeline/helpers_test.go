package pipeline_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/kurochkinivan/onboarding_ai/internal/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// buildPDF собирает минимальный одностраничный PDF с одной строкой текста.
func buildPDF(t *testing.T, text string) []byte {
	t.Helper()

	content := fmt.Sprintf("BT\n/F1 12 Tf\n72 712 Td\n(%s) Tj\nET\n", text)

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, 0, len(objects))
	for i, obj := range objects {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func validDraft(categories int) *domain.CourseDraft {
	draft := &domain.CourseDraft{CourseTitle: "General New Hire Onboarding"}

	for i := range categories {
		category := domain.CategoryDraft{CategoryTitle: fmt.Sprintf("Category %d", i+1)}
		for j := range domain.QuizzesPerCategory {
			category.Quizzes = append(category.Quizzes, domain.QuizDraft{
				Question:      fmt.Sprintf("How often is payroll run? (%d.%d)", i+1, j+1),
				Choices:       []string{"Weekly", "Biweekly", "Monthly", "Yearly"},
				CorrectAnswer: "Biweekly",
			})
		}
		draft.Categories = append(draft.Categories, category)
	}

	return draft
}

func draftJSON(t *testing.T, draft any) string {
	t.Helper()

	data, err := json.Marshal(draft)
	require.NoError(t, err)

	return string(data)
}

// anyArgs возвращает n матчеров mock.Anything для variadic-методов.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = mock.Anything
	}
	return args
}

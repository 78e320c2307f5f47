package report_generator

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/jszwec/csvutil"
	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

var choiceLabels = []string{"A", "B", "C", "D"}

type Generator struct{}

func New() *Generator {
	return &Generator{}
}

// CourseHandout renders categories in position order, each followed by its questions,
// choices and the marked correct answer.
func (g *Generator) CourseHandout(
	course *domain.Course,
	categories []*domain.Category,
	quizzes []*domain.Quiz,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRows(
		text.NewRow(12, course.Title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}),
		text.NewRow(6, "Generated "+course.GeneratedAt.Format("2006-01-02 15:04"), props.Text{Size: 9, Align: align.Center}),
		row.New(6),
	)

	byCategory := groupQuizzes(quizzes)

	for i, category := range categories {
		m.AddRows(text.NewRow(10, fmt.Sprintf("%d. %s", i+1, category.Title), props.Text{Size: 13, Style: fontstyle.Bold}))

		for j, quiz := range byCategory[category.ID] {
			m.AddRows(quizRows(j+1, quiz)...)
		}

		m.AddRows(row.New(4))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pdf: %w", err)
	}

	return doc.GetBytes(), nil
}

func quizRows(number int, quiz *domain.Quiz) []core.Row {
	rows := make([]core.Row, 0, len(quiz.Choices)+3)
	rows = append(rows, text.NewRow(8, fmt.Sprintf("Q%d. %s", number, quiz.Question), props.Text{Size: 10, Style: fontstyle.Bold, Top: 1}))

	for i, choice := range quiz.Choices {
		rows = append(rows, text.NewRow(6, choiceLabel(i)+") "+choice, props.Text{Size: 10, Left: 5}))
	}

	rows = append(rows,
		text.NewRow(6, "Answer: "+quiz.CorrectAnswer, props.Text{Size: 10, Left: 5, Style: fontstyle.Italic}),
		row.New(2),
	)

	return rows
}

type quizRow struct {
	Category      string `csv:"category"`
	Number        int    `csv:"number"`
	Question      string `csv:"question"`
	ChoiceA       string `csv:"choice_a"`
	ChoiceB       string `csv:"choice_b"`
	ChoiceC       string `csv:"choice_c"`
	ChoiceD       string `csv:"choice_d"`
	CorrectAnswer string `csv:"correct_answer"`
}

// QuizzesCSV flattens the quiz bank into one row per question.
func (g *Generator) QuizzesCSV(categories []*domain.Category, quizzes []*domain.Quiz) ([]byte, error) {
	byCategory := groupQuizzes(quizzes)

	rows := make([]quizRow, 0, len(quizzes))
	for _, category := range categories {
		for i, quiz := range byCategory[category.ID] {
			rows = append(rows, quizRow{
				Category:      category.Title,
				Number:        i + 1,
				Question:      quiz.Question,
				ChoiceA:       choiceAt(quiz.Choices, 0),
				ChoiceB:       choiceAt(quiz.Choices, 1),
				ChoiceC:       choiceAt(quiz.Choices, 2),
				ChoiceD:       choiceAt(quiz.Choices, 3),
				CorrectAnswer: quiz.CorrectAnswer,
			})
		}
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quizzes: %w", err)
	}

	return data, nil
}

// groupQuizzes keeps the incoming order, which is position order from the store.
func groupQuizzes(quizzes []*domain.Quiz) map[string][]*domain.Quiz {
	grouped := make(map[string][]*domain.Quiz)
	for _, quiz := range quizzes {
		grouped[quiz.CategoryID] = append(grouped[quiz.CategoryID], quiz)
	}

	return grouped
}

func choiceAt(choices []string, i int) string {
	if i < len(choices) {
		return choices[i]
	}

	return ""
}

func choiceLabel(i int) string {
	if i < len(choiceLabels) {
		return choiceLabels[i]
	}

	return strconv.Itoa(i + 1)
}

package tasks

import (
	"context"
	"fmt"
	"os"
	"strings"
)

const belebeleTaskName = "belebele_uk"

// BelebeleUK is the Ukrainian split of the Belebele reading
// comprehension benchmark.
type BelebeleUK struct {
	tasksPath string
}

func NewBelebeleUK(tasksPath string) *BelebeleUK {
	return &BelebeleUK{tasksPath: strings.TrimSpace(tasksPath)}
}

type belebeleRow struct {
	ID               string `json:"id,omitempty"`
	FloresPassage    string `json:"flores_passage"`
	Question         string `json:"question"`
	MCAnswer1        string `json:"mc_answer1"`
	MCAnswer2        string `json:"mc_answer2"`
	MCAnswer3        string `json:"mc_answer3"`
	MCAnswer4        string `json:"mc_answer4"`
	CorrectAnswerNum string `json:"correct_answer_num"`
}

func (t *BelebeleUK) Name() string { return belebeleTaskName }

func (t *BelebeleUK) Description() string {
	return "Belebele reading comprehension, Ukrainian split (multiple choice, numeric answers)"
}

func (t *BelebeleUK) Load(ctx context.Context) ([]Sample, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%s: nil context", belebeleTaskName)
	}

	rows, err := readJSONL[belebeleRow](ctx, dataPath(t.tasksPath, SetUkrainianBench, belebeleTaskName))
	if err != nil {
		if os.IsNotExist(err) {
			rows = belebeleSampleRows()
		} else {
			return nil, fmt.Errorf("%s: load data: %w", belebeleTaskName, err)
		}
	}

	out := make([]Sample, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		target := strings.TrimSpace(row.CorrectAnswerNum)
		if target == "" || strings.TrimSpace(row.Question) == "" {
			continue
		}

		id := strings.TrimSpace(row.ID)
		if id == "" {
			id = fmt.Sprintf("%s-%d", belebeleTaskName, i+1)
		}

		out = append(out, Sample{
			ID:     id,
			Prompt: belebelePrompt(&row),
			Target: target,
		})
	}
	return out, nil
}

func (t *BelebeleUK) Filter(response string) string {
	return ExtractAnswerDigit(response)
}

func belebelePrompt(row *belebeleRow) string {
	answers := []string{row.MCAnswer1, row.MCAnswer2, row.MCAnswer3, row.MCAnswer4}

	var sb strings.Builder
	sb.WriteString("Уривок: ")
	sb.WriteString(strings.TrimSpace(row.FloresPassage))
	sb.WriteString("\n\nПитання: ")
	sb.WriteString(strings.TrimSpace(row.Question))
	sb.WriteString("\n\n")
	for i, answer := range answers {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.TrimSpace(answer))
	}
	sb.WriteString("\nВідповідь (введіть номер 1, 2, 3 або 4):")
	return sb.String()
}

func belebeleSampleRows() []belebeleRow {
	return []belebeleRow{
		{
			ID:               "belebele-uk-sample-1",
			FloresPassage:    "Київ — столиця України та одне з найдавніших міст Східної Європи. Місто розташоване на берегах річки Дніпро.",
			Question:         "На берегах якої річки розташований Київ?",
			MCAnswer1:        "Дунаю",
			MCAnswer2:        "Дніпра",
			MCAnswer3:        "Десни",
			MCAnswer4:        "Бугу",
			CorrectAnswerNum: "2",
		},
		{
			ID:               "belebele-uk-sample-2",
			FloresPassage:    "Карпати — гірська система на заході України. Найвища вершина українських Карпат — гора Говерла заввишки 2061 метр.",
			Question:         "Яка висота гори Говерла?",
			MCAnswer1:        "2061 метр",
			MCAnswer2:        "1545 метрів",
			MCAnswer3:        "2655 метрів",
			MCAnswer4:        "1880 метрів",
			CorrectAnswerNum: "1",
		},
	}
}

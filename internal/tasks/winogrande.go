package tasks

import (
	"context"
	"fmt"
	"os"
	"strings"
)

const winograndeTaskName = "winogrande_uk"

// WinograndeUK is the Ukrainian translation of the Winogrande
// fill-in-the-blank benchmark.
type WinograndeUK struct {
	tasksPath string
}

func NewWinograndeUK(tasksPath string) *WinograndeUK {
	return &WinograndeUK{tasksPath: strings.TrimSpace(tasksPath)}
}

type winograndeRow struct {
	ID       string `json:"id,omitempty"`
	Sentence string `json:"sentence"`
	Option1  string `json:"option1"`
	Option2  string `json:"option2"`
	Answer   string `json:"answer"`
}

func (t *WinograndeUK) Name() string { return winograndeTaskName }

func (t *WinograndeUK) Description() string {
	return "Winogrande fill-in-the-blank translated to Ukrainian (binary choice)"
}

func (t *WinograndeUK) Load(ctx context.Context) ([]Sample, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%s: nil context", winograndeTaskName)
	}

	rows, err := readJSONL[winograndeRow](ctx, dataPath(t.tasksPath, SetUkrainianBench, winograndeTaskName))
	if err != nil {
		if os.IsNotExist(err) {
			rows = winograndeSampleRows()
		} else {
			return nil, fmt.Errorf("%s: load data: %w", winograndeTaskName, err)
		}
	}

	answerToLetter := map[string]string{"1": "A", "2": "B"}

	out := make([]Sample, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		sentence := strings.TrimSpace(row.Sentence)
		target, ok := answerToLetter[strings.TrimSpace(row.Answer)]
		if sentence == "" || !ok || !strings.Contains(sentence, "_") {
			continue
		}

		id := strings.TrimSpace(row.ID)
		if id == "" {
			id = fmt.Sprintf("%s-%d", winograndeTaskName, i+1)
		}

		var sb strings.Builder
		sb.WriteString("Заповніть пропуск (_) у реченні правильним варіантом:\n\n")
		sb.WriteString("Речення: ")
		sb.WriteString(sentence)
		sb.WriteString("\n\nA. ")
		sb.WriteString(strings.TrimSpace(row.Option1))
		sb.WriteString("\nB. ")
		sb.WriteString(strings.TrimSpace(row.Option2))
		sb.WriteString("\n\nВідповідь:")

		out = append(out, Sample{
			ID:     id,
			Prompt: sb.String(),
			Target: target,
		})
	}
	return out, nil
}

func (t *WinograndeUK) Filter(response string) string {
	return ExtractAnswerLetter(response)
}

func winograndeSampleRows() []winograndeRow {
	return []winograndeRow{
		{
			ID:       "winogrande-uk-sample-1",
			Sentence: "Валіза не помістилася в багажник, тому що _ була занадто великою.",
			Option1:  "валіза",
			Option2:  "багажник",
			Answer:   "1",
		},
		{
			ID:       "winogrande-uk-sample-2",
			Sentence: "Оксана подякувала Марії, бо _ допомогла їй з переїздом.",
			Option1:  "Оксана",
			Option2:  "Марія",
			Answer:   "2",
		},
	}
}

package tasks

import (
	"context"
	"fmt"
	"os"
	"strings"
)

const arcTaskName = "arc_easy_uk"

// ARCEasyUK is the Ukrainian translation of the ARC-Easy science
// question benchmark.
type ARCEasyUK struct {
	tasksPath string
}

func NewARCEasyUK(tasksPath string) *ARCEasyUK {
	return &ARCEasyUK{tasksPath: strings.TrimSpace(tasksPath)}
}

type arcChoices struct {
	Text  []string `json:"text"`
	Label []string `json:"label"`
}

type arcRow struct {
	ID        string     `json:"id,omitempty"`
	Question  string     `json:"question"`
	Choices   arcChoices `json:"choices"`
	AnswerKey string     `json:"answerKey"`
}

func (t *ARCEasyUK) Name() string { return arcTaskName }

func (t *ARCEasyUK) Description() string {
	return "ARC-Easy science questions translated to Ukrainian (multiple choice)"
}

func (t *ARCEasyUK) Load(ctx context.Context) ([]Sample, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%s: nil context", arcTaskName)
	}

	rows, err := readJSONL[arcRow](ctx, dataPath(t.tasksPath, SetUkrainianBench, arcTaskName))
	if err != nil {
		if os.IsNotExist(err) {
			rows = arcSampleRows()
		} else {
			return nil, fmt.Errorf("%s: load data: %w", arcTaskName, err)
		}
	}

	out := make([]Sample, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		q := strings.TrimSpace(row.Question)
		key := strings.TrimSpace(row.AnswerKey)
		if q == "" || key == "" || len(row.Choices.Text) == 0 {
			continue
		}

		id := strings.TrimSpace(row.ID)
		if id == "" {
			id = fmt.Sprintf("%s-%d", arcTaskName, i+1)
		}

		out = append(out, Sample{
			ID:     id,
			Prompt: arcPrompt(q, row.Choices),
			Target: strings.ToUpper(key),
		})
	}
	return out, nil
}

func (t *ARCEasyUK) Filter(response string) string {
	return ExtractAnswerLetter(response)
}

func arcPrompt(question string, choices arcChoices) string {
	var sb strings.Builder
	sb.WriteString("Питання: ")
	sb.WriteString(question)
	sb.WriteString("\n\n")
	for i, text := range choices.Text {
		label := ""
		if i < len(choices.Label) {
			label = strings.TrimSpace(choices.Label[i])
		}
		if label == "" {
			label = string(rune('A' + i))
		}
		sb.WriteString(label)
		sb.WriteString(". ")
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	sb.WriteString("\nВідповідь:")
	return sb.String()
}

func arcSampleRows() []arcRow {
	return []arcRow{
		{
			ID:       "arc-easy-uk-sample-1",
			Question: "Яка планета Сонячної системи є найбільшою?",
			Choices: arcChoices{
				Text:  []string{"Марс", "Юпітер", "Сатурн", "Земля"},
				Label: []string{"A", "B", "C", "D"},
			},
			AnswerKey: "B",
		},
		{
			ID:       "arc-easy-uk-sample-2",
			Question: "Який газ рослини поглинають під час фотосинтезу?",
			Choices: arcChoices{
				Text:  []string{"Кисень", "Азот", "Вуглекислий газ", "Водень"},
				Label: []string{"A", "B", "C", "D"},
			},
			AnswerKey: "C",
		},
		{
			ID:       "arc-easy-uk-sample-3",
			Question: "У якому стані вода перебуває при температурі -10 °C?",
			Choices: arcChoices{
				Text:  []string{"Твердому", "Рідкому", "Газоподібному", "Плазмовому"},
				Label: []string{"A", "B", "C", "D"},
			},
			AnswerKey: "A",
		},
	}
}

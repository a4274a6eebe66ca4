package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
)

const hellaswagTaskName = "hellaswag_uk"

// HellaSwagUK is the Ukrainian translation of the HellaSwag sentence
// completion benchmark.
type HellaSwagUK struct {
	tasksPath string
}

func NewHellaSwagUK(tasksPath string) *HellaSwagUK {
	return &HellaSwagUK{tasksPath: strings.TrimSpace(tasksPath)}
}

type hellaswagRow struct {
	ID            string          `json:"id,omitempty"`
	ActivityLabel string          `json:"activity_label"`
	CtxA          string          `json:"ctx_a"`
	CtxB          string          `json:"ctx_b"`
	Endings       []string        `json:"endings"`
	Label         json.RawMessage `json:"label"`
}

func (t *HellaSwagUK) Name() string { return hellaswagTaskName }

func (t *HellaSwagUK) Description() string {
	return "HellaSwag sentence completion translated to Ukrainian (multiple choice)"
}

var bracketArtifactRe = regexp.MustCompile(`\[.*?\]`)

// preprocessHellaSwag removes WikiHow artifacts carried over from the
// source dataset.
func preprocessHellaSwag(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, " [title]", ". ")
	text = bracketArtifactRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "  ", " ")
	return text
}

func (t *HellaSwagUK) Load(ctx context.Context) ([]Sample, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%s: nil context", hellaswagTaskName)
	}

	rows, err := readJSONL[hellaswagRow](ctx, dataPath(t.tasksPath, SetUkrainianBench, hellaswagTaskName))
	if err != nil {
		if os.IsNotExist(err) {
			rows = hellaswagSampleRows()
		} else {
			return nil, fmt.Errorf("%s: load data: %w", hellaswagTaskName, err)
		}
	}

	letters := []string{"A", "B", "C", "D"}

	out := make([]Sample, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		gold, ok := parseGoldLabel(row.Label)
		if !ok || gold < 0 || gold >= len(row.Endings) || gold >= len(letters) {
			continue
		}

		ctxText := strings.TrimSpace(row.CtxA) + " " + capitalizeFirst(strings.TrimSpace(row.CtxB))
		query := preprocessHellaSwag(strings.TrimSpace(row.ActivityLabel) + ": " + ctxText)

		var sb strings.Builder
		sb.WriteString(query)
		sb.WriteString("\n\nОберіть найкращий варіант продовження:\n")
		for j, ending := range row.Endings {
			if j >= len(letters) {
				break
			}
			sb.WriteString(letters[j])
			sb.WriteString(". ")
			sb.WriteString(preprocessHellaSwag(ending))
			sb.WriteString("\n")
		}
		sb.WriteString("\nВідповідь:")

		id := strings.TrimSpace(row.ID)
		if id == "" {
			id = fmt.Sprintf("%s-%d", hellaswagTaskName, i+1)
		}

		out = append(out, Sample{
			ID:     id,
			Prompt: sb.String(),
			Target: letters[gold],
		})
	}
	return out, nil
}

func (t *HellaSwagUK) Filter(response string) string {
	return ExtractAnswerLetter(response)
}

// parseGoldLabel accepts both numeric and string-encoded labels, as the
// source dataset ships both.
func parseGoldLabel(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var asInt int
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return asInt, true
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		asString = strings.TrimSpace(asString)
		switch asString {
		case "0", "1", "2", "3":
			return int(asString[0] - '0'), true
		}
	}
	return 0, false
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func hellaswagSampleRows() []hellaswagRow {
	return []hellaswagRow{
		{
			ID:            "hellaswag-uk-sample-1",
			ActivityLabel: "Приготування їжі",
			CtxA:          "Жінка ставить каструлю з водою на плиту.",
			CtxB:          "вона",
			Endings: []string{
				"вмикає конфорку та чекає, поки вода закипить.",
				"кладе каструлю в холодильник.",
				"виливає воду у вікно.",
				"накриває плиту рушником.",
			},
			Label: json.RawMessage(`0`),
		},
		{
			ID:            "hellaswag-uk-sample-2",
			ActivityLabel: "Прибирання",
			CtxA:          "Чоловік бере віник і совок.",
			CtxB:          "він",
			Endings: []string{
				"ховає віник у шафу та йде спати.",
				"змітає сміття на совок і висипає його у відро.",
				"малює віником картину.",
				"ламає совок навпіл.",
			},
			Label: json.RawMessage(`1`),
		},
	}
}

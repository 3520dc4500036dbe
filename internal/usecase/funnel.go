package usecase

import (
	"errors"
	"fmt"
	"strings"
)

// Stage is a step a chat reaches while interacting with the bot.
type Stage string

const (
	StageStart      Stage = "start"
	StageCallback   Stage = "callback"
	StageWebAppData Stage = "webapp_data"
)

// ErrEmptyStage is returned by repositories asked to record a hit without a stage.
var ErrEmptyStage = errors.New("funnel: empty stage")

type FunnelRepository interface {
	Hit(stage Stage, chatID int64) error
	Counts() (map[Stage]int, error)
}

type FunnelUsecase struct {
	repo  FunnelRepository
	order []Stage
}

func NewFunnelUsecase(repo FunnelRepository) *FunnelUsecase {
	return &FunnelUsecase{
		repo:  repo,
		order: []Stage{StageStart, StageCallback, StageWebAppData},
	}
}

func (u *FunnelUsecase) Reach(chatID int64, stage Stage) error {
	if stage == "" {
		return nil
	}
	return u.repo.Hit(stage, chatID)
}

func (u *FunnelUsecase) Chart() (string, error) {
	counts, err := u.repo.Counts()
	if err != nil {
		return "", fmt.Errorf("funnel counts: %w", err)
	}
	if len(counts) == 0 {
		return "Данных по воронке пока нет", nil
	}
	base := counts[u.order[0]]
	if base == 0 {
		for _, s := range u.order {
			if counts[s] > base {
				base = counts[s]
			}
		}
	}
	var prev int
	var b strings.Builder
	b.WriteString("Воронка по шагам:\n")
	for i, s := range u.order {
		c := counts[s]
		relPrev := 0
		if i == 0 {
			relPrev = 100
		} else if prev > 0 {
			relPrev = percent(c, prev)
		}
		fmt.Fprintf(&b, "- %s: %d | %3d%% от базового | %3d%% от пред. %s\n",
			StageLabel(s), c, percent(c, base), relPrev, bar20(c, base))
		prev = c
	}
	return b.String(), nil
}

// GraphData returns labels and values in stage order for the chart.
func (u *FunnelUsecase) GraphData() ([]string, []int, error) {
	counts, err := u.repo.Counts()
	if err != nil {
		return nil, nil, fmt.Errorf("funnel counts: %w", err)
	}
	labels := make([]string, 0, len(u.order))
	values := make([]int, 0, len(u.order))
	for _, s := range u.order {
		labels = append(labels, StageLabel(s))
		values = append(values, counts[s])
	}
	return labels, values, nil
}

func percent(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (100 * a) / b
}

func bar20(val, top int) string {
	if top <= 0 {
		return ""
	}
	filled := min(max(0, (20*val)/top), 20)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", 20-filled) + "]"
}

func StageLabel(s Stage) string {
	switch s {
	case StageStart:
		return "/start"
	case StageCallback:
		return "Кнопки"
	case StageWebAppData:
		return "Данные Web App"
	default:
		return string(s)
	}
}

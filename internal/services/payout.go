package services

import (
	"strconv"
	"strings"

	"github.com/stigscousin/millerlite-leaderboard/internal/models"
)

// PayoutTable maps a finishing position to its prize in whole currency units
type PayoutTable map[int]int64

// Lookup returns the prize for a raw position string such as "1", "T5" or
// "CUT". Exactly one leading "T" is stripped.
func (t PayoutTable) Lookup(position string) (int64, bool) {
	position = strings.TrimSpace(position)
	if strings.EqualFold(position, models.StatusCut) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(position, "T"))
	if err != nil {
		return 0, false
	}
	amount, ok := t[n]
	return amount, ok
}

// Display returns the prize as a decimal string, or "-" when there is none
func (t PayoutTable) Display(position string) string {
	amount, ok := t.Lookup(position)
	if !ok {
		return models.Placeholder
	}
	return strconv.FormatInt(amount, 10)
}

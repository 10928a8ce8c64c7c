package services

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/stigscousin/millerlite-leaderboard/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func flex(v int) models.FlexInt {
	return models.FlexInt{Value: v, Valid: true}
}

func round(sequence, thru, score int) models.RawRound {
	return models.RawRound{Sequence: flex(sequence), Thru: flex(thru), Score: flex(score)}
}

var testPayouts = PayoutTable{
	1:  4200000,
	2:  2268000,
	3:  1428000,
	5:  840000,
	55: 57000,
}

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateBetID() string {
	return fmt.Sprintf("bet_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateDepositID() string {
	return fmt.Sprintf("dep_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateWithdrawID() string {
	return fmt.Sprintf("wd_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func FormatCurrency(minorUnits int64) string {
	return fmt.Sprintf("$%d.%02d", minorUnits/100, minorUnits%100)
}

package repository

import (
	"os"
	"testing"

	"dishguru-api/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

package purchase_test

import (
	"os"
	"testing"

	"github.com/KhanPromiseP/cverra-sub006/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

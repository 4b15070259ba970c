package repository_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/smartstock/smartstock-backend/pkg/testutil"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	suite, err = testutil.NewIntegrationSuite(ctx)
	if err != nil {
		log.Fatalf("failed to create integration suite: %v", err)
	}
	code := m.Run()
	suite.Cleanup(ctx)
	os.Exit(code)
}

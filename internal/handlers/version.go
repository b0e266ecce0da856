package handlers

import (
	"runtime"
	"time"

	"github.com/datahub/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// Version and Commit are set with -ldflags "-X" at build time.
var (
	Version = "dev"
	Commit  = ""
)

const apiVersion = "v1"

var startedAt = time.Now().UTC()

type buildInfo struct {
	Version    string    `json:"version"`
	Commit     string    `json:"commit,omitempty"`
	APIVersion string    `json:"apiVersion"`
	GoVersion  string    `json:"goVersion"`
	StartedAt  time.Time `json:"startedAt"`
}

func GetVersion(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, buildInfo{
		Version:    Version,
		Commit:     Commit,
		APIVersion: apiVersion,
		GoVersion:  runtime.Version(),
		StartedAt:  startedAt,
	})
}

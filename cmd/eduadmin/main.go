// Command eduadmin runs the operator tasks of the EduCareWay API: migrations,
// catalog seeding, bulk note ingestion, admin promotion and broadcasts.
package main

import (
	"os"

	"github.com/yigit/educareway/internal/pkg/logger"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

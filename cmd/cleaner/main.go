package main

import (
	"time"

	"github.com/koinoniahq/koinonia/app_setting"
	"github.com/koinoniahq/koinonia/cleaner"
	"github.com/koinoniahq/koinonia/utils"
	"github.com/koinoniahq/koinonia/utils/dotenv"
	. "github.com/koinoniahq/koinonia/utils/flag"
	. "github.com/koinoniahq/koinonia/utils/log"
)

// The cleaner is invoked by an outside scheduler (cron). It runs one
// retention sweep and exits. Repeating a run is safe.
func main() {
	ParseFlags()
	InitLogger()

	if err := dotenv.LoadDotEnvs(); err != nil {
		Log.Fatal("fail to load env : ", err)
	}

	setting := app_setting.LoadKoinoniaAppSetting(*AppSetting)

	db, err := utils.GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect database : ", err)
	}
	utils.DatabaseSetupAndMigration(db)

	if _, err := cleaner.RetentionSweep(db, setting.RETENTION_DAYS, time.Now()); err != nil {
		Log.Fatal("retention sweep failed : ", err)
	}
}

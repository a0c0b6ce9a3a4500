/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
)

const (
	APIServer = "api_server"
	Cleaner   = "cleaner"
)

var (
	IsDevelopment *bool
	ServiceName   *string
	ByPassAuth    *bool
	// AppSetting points to the optional YAML tunables file. Empty means use
	// the compiled-in defaults.
	AppSetting *string
)

func init() {
	IsDevelopment = flag.Bool("dev", true, "set to true if the current run is for development. default value is true")
	ServiceName = flag.String("service", APIServer, "'api_server' or 'cleaner'")
	ByPassAuth = flag.Bool("no_auth", false, "set to true to bypass admin auth, for local debugging only")
	AppSetting = flag.String("app_setting", "", "path to the YAML app setting file, empty for defaults")
}

// ParseFlags should be called once at the beginning of main.
func ParseFlags() {
	flag.Parse()
}

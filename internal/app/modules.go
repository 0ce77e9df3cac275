package app

import (
	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/specialistvlad/resprobe/modules/fileio"
	"github.com/specialistvlad/resprobe/modules/h5py"
	"github.com/specialistvlad/resprobe/modules/http_client"
	"github.com/specialistvlad/resprobe/modules/logging"
	"github.com/specialistvlad/resprobe/modules/s3"
	"github.com/specialistvlad/resprobe/modules/socketio"
	"github.com/specialistvlad/resprobe/modules/sys_os"
)

// coreModules is the definitive list of all Go-native dependencies that
// are compiled into the resprobe binary.
var coreModules = []registry.Module{
	&sys_os.Module{},
	&h5py.Module{},
	&fileio.Module{},
	&http_client.Module{},
	&s3.Module{},
	&socketio.Module{},
	&logging.Module{},
}

// CoreModules returns a copy of the compiled-in module list, for callers
// that register extra modules next to it.
func CoreModules() []registry.Module {
	return append([]registry.Module(nil), coreModules...)
}

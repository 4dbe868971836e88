package app

import (
	"github.com/vk/flowforgego/internal/registry"
	"github.com/vk/flowforgego/modules/env_vars"
	"github.com/vk/flowforgego/modules/exec"
	"github.com/vk/flowforgego/modules/http_request"
	"github.com/vk/flowforgego/modules/notify"
	"github.com/vk/flowforgego/modules/print"
)

// coreModules is the definitive list of all task modules that are compiled
// into the flowforge binary.
var coreModules = []registry.Module{
	&exec.Module{},
	&print.Module{},
	&env_vars.Module{},
	&http_request.Module{},
	&notify.Module{},
}

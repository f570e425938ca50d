package ipc

import "fmt"

// Result is a service result code.  Zero is success; any other value packs
// a module in the low 9 bits and a description in the next 13.
type Result uint32

// ResultSuccess is the zero result.
const ResultSuccess Result = 0

// ModuleDVR identifies results produced by the command handler.
const ModuleDVR = 0x1A0

// Descriptions used with ModuleDVR.
const (
	DescUnknownCommand = 1
	DescInvalidMode    = 2
	DescSwitchFailed   = 3
)

// MakeResult builds a result code from a module and description.
func MakeResult(module, desc uint32) Result {
	return Result((module & 0x1FF) | (desc&0x1FFF)<<9)
}

// Module returns the module part of r.
func (r Result) Module() uint32 { return uint32(r) & 0x1FF }

// Description returns the description part of r.
func (r Result) Description() uint32 { return (uint32(r) >> 9) & 0x1FFF }

// Succeeded reports whether r is the success code.
func (r Result) Succeeded() bool { return r == ResultSuccess }

func (r Result) String() string {
	if r.Succeeded() {
		return "success"
	}
	return fmt.Sprintf("0x%x (module 0x%x, description %d)", uint32(r), r.Module(), r.Description())
}

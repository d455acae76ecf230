// Package device holds the standard vm16 peripherals. Each one attaches
// handlers for its ports to a vm.Machine and exports its port numbers and
// constants as assembler defines.
package device

// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package periph

import "fmt"

// Addr is a 7-bit register address.
type Addr uint8

const (
	OutEnableLow  Addr = 0x00 // output enable, bits 7:0
	OutEnableHigh Addr = 0x01 // output enable, bits 15:8
	PWMEnableLow  Addr = 0x02 // PWM enable, bits 7:0
	PWMEnableHigh Addr = 0x03 // PWM enable, bits 15:8
	PWMDutyCycle  Addr = 0x04

	NumRegs = 5
)

var addrNames = [NumRegs]string{
	"en_reg_out_7_0",
	"en_reg_out_15_8",
	"en_reg_pwm_7_0",
	"en_reg_pwm_15_8",
	"pwm_duty_cycle",
}

// Valid returns whether a register is mapped at that address.
func (a Addr) Valid() bool { return a < NumRegs }

func (a Addr) String() string {
	if !a.Valid() {
		return fmt.Sprintf("addr(0x%02x)", uint8(a))
	}
	return addrNames[a]
}

// ParseAddr returns the address of the register with the provided name.
func ParseAddr(name string) (Addr, error) {
	for i, v := range addrNames {
		if v == name {
			return Addr(i), nil
		}
	}
	return 0, fmt.Errorf("periph: unknown register %q", name)
}

// Registers is the register file of the peripheral.
type Registers struct {
	OutEnableLow  uint8 `json:"en_reg_out_7_0"`
	OutEnableHigh uint8 `json:"en_reg_out_15_8"`
	PWMEnableLow  uint8 `json:"en_reg_pwm_7_0"`
	PWMEnableHigh uint8 `json:"en_reg_pwm_15_8"`
	PWMDutyCycle  uint8 `json:"pwm_duty_cycle"`
}

// Get returns the value of the register at addr.
func (r *Registers) Get(addr Addr) (uint8, bool) {
	if p := r.at(addr); p != nil {
		return *p, true
	}
	return 0, false
}

// Array returns the registers, indexed by address.
func (r Registers) Array() [NumRegs]uint8 {
	return [NumRegs]uint8{
		r.OutEnableLow, r.OutEnableHigh,
		r.PWMEnableLow, r.PWMEnableHigh,
		r.PWMDutyCycle,
	}
}

func (r *Registers) set(addr Addr, v uint8) bool {
	p := r.at(addr)
	if p == nil {
		return false
	}
	*p = v
	return true
}

func (r *Registers) at(addr Addr) *uint8 {
	switch addr {
	case OutEnableLow:
		return &r.OutEnableLow
	case OutEnableHigh:
		return &r.OutEnableHigh
	case PWMEnableLow:
		return &r.PWMEnableLow
	case PWMEnableHigh:
		return &r.PWMEnableHigh
	case PWMDutyCycle:
		return &r.PWMDutyCycle
	}
	return nil
}

func (r Registers) String() string {
	return fmt.Sprintf(
		"Registers{out=0x%02x%02x, pwm=0x%02x%02x, duty=0x%02x}",
		r.OutEnableHigh, r.OutEnableLow,
		r.PWMEnableHigh, r.PWMEnableLow,
		r.PWMDutyCycle,
	)
}

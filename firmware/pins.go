//go:build tinygo

package main

import "machine"

const (
	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// machine.ADC.Get returns left-justified 16-bit values.
	ADC_SHIFT = 16 - ADC_RESOLUTION

	// Analog front end, scanned in this order on every trigger
	PIN_REFERENCE  = machine.A0 // Across the reference resistor
	PIN_THERMISTOR = machine.A1 // Across the thermistor
	PIN_LIGHT      = machine.A2 // Ambient light sensor output

	// Low-light indicator
	PIN_LED        = machine.LED
	LED_ACTIVE_LOW = true

	// Reports are short (~45 bytes) and emitted twice a second.
	UART_BAUD_RATE = 115200
)

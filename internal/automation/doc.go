// Package automation drives many machines without a terminal: scripted
// scenarios with expected outcomes, and batches of random inputs.
package automation

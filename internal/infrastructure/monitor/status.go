package monitor

import "time"

type Status struct {
	API       bool      `json:"api"`
	Credstore bool      `json:"credstore"`
	LastCheck time.Time `json:"last_check"`
}

package entity

import (
	"fmt"
	"strings"
)

// Kind names a serial strategy.
type Kind string

const (
	KindTime     Kind = "time"
	KindTicket   Kind = "ticket"
	KindUUID3    Kind = "uuid3"
	KindUUID4    Kind = "uuid4"
	KindUUID5    Kind = "uuid5"
	KindRandom62 Kind = "random62"
	KindCounter  Kind = "counter"
)

// Kinds lists every kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindTime, KindTicket, KindUUID3, KindUUID4, KindUUID5, KindRandom62, KindCounter}
}

// ParseKind accepts a kind name in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown serial kind %q", s)
}

package lotto

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/Digital-Creators-Team/lotto-ledger/errors"
)

// Identifier is the forgery check printed on a ticket. Two identifiers are
// the same ticket only when all four fields match.
type Identifier struct {
	TicketNumber int `json:"ticket_number"`
	OfficeNumber int `json:"office_number"`
	Nonce        int `json:"nonce"`
	Checksum     int `json:"checksum"`
}

// NewIdentifier validates the parts and computes the checksum.
func NewIdentifier(ticketNumber, officeNumber, nonce int) (Identifier, error) {
	if ticketNumber < 1 {
		return Identifier{}, apperrors.InvalidArgument("ticket number must be >= 1, got %d", ticketNumber)
	}
	if officeNumber < 1 {
		return Identifier{}, apperrors.InvalidArgument("office number must be >= 1, got %d", officeNumber)
	}
	if nonce < 0 {
		return Identifier{}, apperrors.InvalidArgument("nonce must be >= 0, got %d", nonce)
	}
	return Identifier{
		TicketNumber: ticketNumber,
		OfficeNumber: officeNumber,
		Nonce:        nonce,
		Checksum:     Checksum(ticketNumber, officeNumber, nonce),
	}, nil
}

// Checksum is the sum of the decimal digits of the three parts, mod 100.
func Checksum(ticketNumber, officeNumber, nonce int) int {
	return (digitSum(ticketNumber) + digitSum(officeNumber) + digitSum(nonce)) % 100
}

func digitSum(n int) int {
	sum := 0
	for n > 0 {
		sum += n % 10
		n /= 10
	}
	return sum
}

// String renders ticket-office-nonce-checksum, e.g. 17-3-000482913-31.
func (id Identifier) String() string {
	return fmt.Sprintf("%d-%d-%09d-%02d", id.TicketNumber, id.OfficeNumber, id.Nonce, id.Checksum)
}

// ParseIdentifier reads the String form. The checksum is taken as printed,
// so a tampered identifier parses but will not match the office record.
func ParseIdentifier(s string) (Identifier, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 4 {
		return Identifier{}, apperrors.InvalidArgument("identifier %q must have 4 dash-separated parts", s)
	}
	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return Identifier{}, apperrors.InvalidArgument("identifier %q has a malformed part %q", s, p)
		}
		values[i] = v
	}
	id, err := NewIdentifier(values[0], values[1], values[2])
	if err != nil {
		return Identifier{}, err
	}
	id.Checksum = values[3]
	return id, nil
}

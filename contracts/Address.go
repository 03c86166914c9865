package contracts

import (
	"errors"
	"fmt"
	"strconv"
)

// Address is a zero-based (row, column) coordinate identifying a cell.
type Address struct {
	Row int
	Col int
}

var InvalidAddressError = errors.New("invalid cell address")

// Sheet extents are capped at Excel's limits (column XFD, row 1048576), so a
// label with an absurd coordinate is an invalid address, not a grid the sheet
// would try to grow to.
const (
	MaxRows = 1048576
	MaxCols = 16384
)

// Label renders the address in A1 notation. Column letters are bijective
// base-26 (A=0, Z=25, AA=26), the row number is 1-based.
func (a Address) Label() string {
	letters := make([]byte, 0, 3)
	for n := a.Col + 1; n > 0; n = (n - 1) / 26 {
		letters = append(letters, byte('A'+(n-1)%26))
	}

	for i, j := 0, len(letters)-1; i < j; i, j = i+1, j-1 {
		letters[i], letters[j] = letters[j], letters[i]
	}

	return string(letters) + strconv.Itoa(a.Row+1)
}

// ParseAddress converts an A1-style label to an Address. Lowercase letters
// are accepted and canonicalized. The grammar is [A-Za-z]+[1-9][0-9]*; any
// other input fails with InvalidAddressError.
func ParseAddress(label string) (Address, error) {
	split := 0
	for split < len(label) && isLetter(label[split]) {
		split++
	}

	digits := label[split:]
	if split == 0 || len(digits) == 0 || digits[0] == '0' {
		return Address{}, fmt.Errorf("`%s`: %w", label, InvalidAddressError)
	}

	col := 0
	for i := 0; i < split; i++ {
		letter := label[i]
		if letter >= 'a' {
			letter -= 'a' - 'A'
		}
		col = col*26 + int(letter-'A') + 1
		if col > MaxCols {
			return Address{}, fmt.Errorf("`%s`: %w", label, InvalidAddressError)
		}
	}

	row := 0
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Address{}, fmt.Errorf("`%s`: %w", label, InvalidAddressError)
		}
		row = row*10 + int(digits[i]-'0')
		if row > MaxRows {
			return Address{}, fmt.Errorf("`%s`: %w", label, InvalidAddressError)
		}
	}

	return Address{Row: row - 1, Col: col - 1}, nil
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

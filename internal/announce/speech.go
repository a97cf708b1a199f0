package announce

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ibher16/antrian-lab-ibsi/internal/models"
)

var digitWords = map[rune]string{
	'0': "nol", '1': "satu", '2': "dua", '3': "tiga", '4': "empat",
	'5': "lima", '6': "enam", '7': "tujuh", '8': "delapan", '9': "sembilan",
}

var letterWords = map[string]string{
	"A": "A", "B": "Be", "C": "Ce", "D": "De", "E": "E", "F": "Ef",
	"G": "Ge", "H": "Ha", "I": "I", "J": "Je", "K": "Ka", "L": "El",
	"M": "Em", "N": "En", "O": "O", "P": "Pe", "Q": "Qiu", "R": "Er",
	"S": "Es", "T": "Te", "U": "U", "V": "Ve", "W": "We", "X": "Eks",
	"Y": "Ye", "Z": "Zet",
}

var counterWords = []string{
	"nol", "satu", "dua", "tiga", "empat", "lima", "enam", "tujuh",
	"delapan", "sembilan", "sepuluh", "sebelas", "dua belas", "tiga belas",
	"empat belas", "lima belas", "enam belas", "tujuh belas", "delapan belas",
	"sembilan belas", "dua puluh",
}

// digitByDigit spells a number one digit at a time. A-005 is announced "nol
// nol lima", never "lima": padded codes read as a whole are ambiguous over
// the speakers.
func digitByDigit(number string) string {
	words := make([]string, 0, len(number))
	for _, digit := range number {
		word, ok := digitWords[digit]
		if !ok {
			word = string(digit)
		}
		words = append(words, word)
	}
	return strings.Join(words, " ")
}

// SpokenCode renders a formatted code for speech synthesis: the prefix as its
// phonetic letter name, the suffix digit by digit.
func SpokenCode(code string) string {
	prefix, number, found := strings.Cut(code, "-")
	if !found {
		return digitByDigit(code)
	}
	letter, ok := letterWords[prefix]
	if !ok {
		letter = prefix
	}
	return letter + " " + digitByDigit(number)
}

// SpokenCounter uses the word table through twenty and digit-by-digit above.
func SpokenCounter(counter int) string {
	if counter >= 0 && counter < len(counterWords) {
		return counterWords[counter]
	}
	return digitByDigit(strconv.Itoa(counter))
}

// Text is the full announcement phrase for a called ticket.
func Text(ticket models.Ticket) string {
	counter := ticket.Counter
	if counter == 0 {
		counter = 1
	}
	return fmt.Sprintf("Nomor Antrian %s, Menuju Loket %s", SpokenCode(ticket.FormattedCode), SpokenCounter(counter))
}

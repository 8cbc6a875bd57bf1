package registration

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

var (
	sampleFirstNames = []string{
		"Aarav", "Vivaan", "Aditya", "Vihaan", "Arjun", "Sai", "Reyansh", "Ayaan", "Krishna", "Ishaan",
		"Shaurya", "Atharv", "Advik", "Pranav", "Rishabh", "Kabir", "Aryan", "Yuvraj", "Rudra", "Karthik",
		"Ananya", "Diya", "Priya", "Kavya", "Anika", "Isha", "Tanvi", "Riya", "Sneha", "Pooja",
		"Shruti", "Meera", "Nisha", "Divya", "Sakshi", "Rashika", "Simran", "Aditi", "Khushi", "Mansi",
	}
	sampleLastNames = []string{
		"Sharma", "Verma", "Gupta", "Singh", "Kumar", "Patel", "Jain", "Agarwal", "Bansal", "Mittal",
		"Shah", "Chopra", "Malhotra", "Arora", "Kapoor", "Mehta", "Joshi", "Tiwari", "Pandey", "Saxena",
		"Srivastava", "Mishra", "Yadav", "Thakur", "Chauhan", "Rajput", "Bhardwaj", "Agnihotri", "Dixit", "Tripathi",
	}
	sampleDomains  = []string{"gmail.com", "yahoo.com", "outlook.com", "hotmail.com", "icloud.com"}
	sampleBranches = []string{"CSE", "IT", "ECE", "ME", "CE"}
	sampleYears    = []string{"1", "2", "3", "4"}
)

// sampleWindow is how far back generated timestamps may lie.
const sampleWindow = 30 * 24 * time.Hour

// GenerateSamples returns up to n sample registrations with distinct emails.
// Every sample passes ValidateStrict. Timestamps are spread over the 30 days
// before now. Fewer than n records are returned only if 3n attempts do not
// yield enough distinct emails.
func GenerateSamples(n int, rng *rand.Rand, now time.Time) []Record {
	records := make([]Record, 0, n)
	seen := make(map[string]struct{}, n)

	for attempts := 0; len(records) < n && attempts < n*3; attempts++ {
		r := sampleRecord(rng, now)
		if _, dup := seen[r.EmailKey()]; dup {
			continue
		}
		if ValidateStrict(r) != nil {
			continue
		}
		seen[r.EmailKey()] = struct{}{}
		records = append(records, r)
	}
	return records
}

func sampleRecord(rng *rand.Rand, now time.Time) Record {
	first := pick(rng, sampleFirstNames)
	last := pick(rng, sampleLastNames)

	email := fmt.Sprintf("%s.%s%d@%s",
		strings.ToLower(first), strings.ToLower(last), rng.IntN(99), pick(rng, sampleDomains))
	phone := fmt.Sprintf("%d%d", rng.IntN(4)+6, rng.IntN(900000000)+100000000)
	age := time.Duration(rng.Int64N(int64(sampleWindow)))

	return Record{
		Name:   first + " " + last,
		Email:  email,
		Phone:  phone,
		Year:   pick(rng, sampleYears),
		Branch: pick(rng, sampleBranches),
	}.Stamp(now.Add(-age))
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.IntN(len(values))]
}

package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/chama-dev/chama/backend/internal/registration"
)

var firstNames = []string{
	"Amina", "Baraka", "Chebet", "Daudi", "Esther", "Faraji", "Grace", "Hassan",
	"Imani", "Jabari", "Kamau", "Lulu", "Makena", "Njeri", "Otieno", "Wanjiru",
}

var lastNames = []string{
	"Achieng", "Kariuki", "Mwangi", "Njoroge", "Odhiambo", "Wafula", "Kiprono", "Mutua",
}

var groupWords = []string{
	"Umoja", "Tumaini", "Harambee", "Baraka", "Jitegemee", "Neema", "Upendo", "Amani",
}

var digits = "0123456789"

func GenerateRandomName() string {
	return firstNames[rand.Intn(len(firstNames))] + " " + lastNames[rand.Intn(len(lastNames))]
}

func randomDigits(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(digits[rand.Intn(len(digits))])
	}
	return b.String()
}

// GenerateEmailFromName lowercases the name and appends a short random suffix
// so repeated names do not collide.
func GenerateEmailFromName(name, domainName string) string {
	local := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	return fmt.Sprintf("%s%s@%s", local, randomDigits(4), domainName)
}

func GenerateRandomGroupName() string {
	return fmt.Sprintf("%s Women Group %s", groupWords[rand.Intn(len(groupWords))], randomDigits(2))
}

// GenerateRandomRegistration fills every field of the registration form.
// documentID names an already stored document.
func GenerateRandomRegistration(password, emailDomain, documentID string) registration.Input {
	groupName := GenerateRandomGroupName()
	chairman := GenerateRandomName()
	secretary := GenerateRandomName()
	treasurer := GenerateRandomName()

	return registration.Input{
		GroupName:        groupName,
		Email:            GenerateEmailFromName(groupName, emailDomain),
		AccountNo:        randomDigits(10),
		ChairmanName:     chairman,
		ChairmanEmail:    GenerateEmailFromName(chairman, emailDomain),
		ChairmanPassword: password,
		SecretaryName:    secretary,
		SecretaryEmail:   GenerateEmailFromName(secretary, emailDomain),
		TreasurerName:    treasurer,
		TreasurerEmail:   GenerateEmailFromName(treasurer, emailDomain),
		Document:         documentID,
	}
}

// GenerateRandomContribution returns an amount between 100 and 5000 in steps of 50.
func GenerateRandomContribution() float64 {
	return float64(100 + 50*rand.Intn(99))
}

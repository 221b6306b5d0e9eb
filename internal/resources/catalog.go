// Package resources holds the static helpline, legal and NGO data the
// assistant quotes from. Everything here is read-only after Load.
package resources

import (
	"encoding/json"
	"strings"
)

// Helpline keys referenced directly by fallback replies and alerts
const (
	NationalEmergency  = "national_emergency"
	WomenHelpline      = "women_helpline"
	ChildHelpline      = "child_helpline"
	CybercrimeHelpline = "cybercrime_helpline"
)

// NGO is a support organisation reachable in a city
type NGO struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// PhoneNumbers is one or more numbers for a single service. A single number
// encodes as a JSON string, several as a JSON list.
type PhoneNumbers []string

func (p PhoneNumbers) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	return json.Marshal([]string(p))
}

func (p PhoneNumbers) String() string {
	return strings.Join(p, ", ")
}

func one(number string) PhoneNumbers {
	return PhoneNumbers{number}
}

// Catalog is the immutable resource database
type Catalog struct {
	helplines        map[string]string
	legalInfo        map[string]string
	ngos             map[string]NGO
	selfCareTips     []string
	emergencyNumbers map[string]map[string]PhoneNumbers
}

// Load builds the catalog. It never fails; the data is compiled in.
func Load() *Catalog {
	return &Catalog{
		helplines: map[string]string{
			NationalEmergency:  "112",
			WomenHelpline:      "181",
			ChildHelpline:      "1098",
			CybercrimeHelpline: "1930",
		},
		legalInfo: map[string]string{
			"domestic_violence":    "The Protection of Women from Domestic Violence Act, 2005 protects you from physical, emotional, and economic abuse. You have the right to a protection order.",
			"workplace_harassment": "The Sexual Harassment of Women at Workplace (Prevention, Prohibition and Redressal) Act, 2013 requires employers to form an Internal Complaints Committee (ICC).",
		},
		ngos: map[string]NGO{
			"mumbai":    {Name: "Akshara Centre", Contact: "022-24316082"},
			"delhi":     {Name: "Jagori", Contact: "011-26692700"},
			"bangalore": {Name: "Vimochana", Contact: "080-25492781"},
		},
		selfCareTips: []string{
			"Take a few deep breaths. Inhale for 4 seconds, hold for 4, and exhale for 6.",
			"Find a quiet space if you can. Your safety and peace are important.",
			"Remember that your feelings are valid. It's okay to feel scared or upset.",
		},
		emergencyNumbers: map[string]map[string]PhoneNumbers{
			"General Emergency Services": {
				"National Emergency Number":                  one("112"),
				"Police":                                     one("100"),
				"Fire":                                       one("101"),
				"Ambulance":                                  one("102"),
				"Disaster Management Services":               one("108"),
				"Cyber Crime Helpline":                       one("1930"),
				"Child Helpline (CHILDLINE)":                 one("1098"),
				"Senior Citizen Helpline":                    one("14567"),
				"Road Accident Emergency Service":            one("1073"),
				"Railway Passenger Helpline":                 one("139"),
				"Mental Health Helpline":                     one("080-46110007"),
				"Blood Bank/Health Info":                     one("104"),
				"Anti Poison (New Delhi)":                    one("1066 or 011-1066"),
				"Railway Accident Emergency Service":         one("1072"),
				"Relief Commissioner for Natural Calamities": one("1070"),
				"Central Vigilance Commission":               one("1964"),
				"Tourist Helpline":                           one("1363 or 1800111363"),
				"LPG Leak Helpline":                          one("1906"),
				"Air Ambulance":                              one("9540161344"),
				"AIDS Helpline":                              one("1097"),
				"ORBO Centre, AIIMS (Organ Donation, Delhi)": one("1060"),
				"Call Centre":                                one("1551"),
			},
			"Women’s Safety Helplines": {
				"National Women Helpline":                       one("181"),
				"National Commission for Women Helpline":        one("7827170170"),
				"Women Helpline (General)":                      one("1091"),
				"Women Power Line (Uttar Pradesh)":              one("1090"),
				"Central Social Welfare Board - Police Helpline": {"1091", "1291", "(011) 23317004"},
				"Shakti Shalini":                                one("10920"),
				"Shakti Shalini - Women’s Shelter":              {"(011) 24373736", "(011) 24373737"},
				"SAARTHAK":                                      {"(011) 26853846", "(011) 26524061"},
				"All India Women’s Conference":                  {"10921", "(011) 23389680"},
				"Joint Women’s Programme (Branches in Bangalore, Kolkata, Chennai)": one("(011) 24619821"),
				"Sakshi - Violence Intervention Center":         {"(0124) 2562336", "(0124) 5018873"},
				"Saheli - Women’s Organization":                 one("(011) 24616485 (Available on Saturdays)"),
				"Nirmal Niketan":                                one("(011) 27859158"),
				"Nari Raksha Samiti":                            one("(011) 23973949"),
				"RAHI (Recovering and Healing from Incest)":     {"(011) 26238466", "(011) 26224042", "(011) 26227647"},
				"JAGORI":                                        {"918800996640", "(011) 26692700"},
			},
		},
	}
}

// Helpline returns the number registered under name, or "" when unknown.
func (c *Catalog) Helpline(name string) string {
	return c.helplines[name]
}

func (c *Catalog) Helplines() map[string]string {
	out := make(map[string]string, len(c.helplines))
	for k, v := range c.helplines {
		out[k] = v
	}
	return out
}

func (c *Catalog) LegalInfo() map[string]string {
	out := make(map[string]string, len(c.legalInfo))
	for k, v := range c.legalInfo {
		out[k] = v
	}
	return out
}

func (c *Catalog) NGOs() map[string]NGO {
	out := make(map[string]NGO, len(c.ngos))
	for k, v := range c.ngos {
		out[k] = v
	}
	return out
}

// SelfCareTips returns the tips in their fixed order
func (c *Catalog) SelfCareTips() []string {
	return append([]string(nil), c.selfCareTips...)
}

// EmergencyNumbers returns category -> service -> numbers
func (c *Catalog) EmergencyNumbers() map[string]map[string]PhoneNumbers {
	out := make(map[string]map[string]PhoneNumbers, len(c.emergencyNumbers))
	for category, services := range c.emergencyNumbers {
		inner := make(map[string]PhoneNumbers, len(services))
		for name, numbers := range services {
			inner[name] = append(PhoneNumbers(nil), numbers...)
		}
		out[category] = inner
	}
	return out
}

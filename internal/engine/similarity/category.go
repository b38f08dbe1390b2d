package similarity

import "strings"

// categoryGroups is the controlled fitness vocabulary. Each term belongs to
// one or more semantic groups so that related terms align partially.
var categoryGroups = map[string][]string{
	"gym":               {"fitness", "health"},
	"fitness":           {"fitness", "health"},
	"health_club":       {"fitness", "health", "wellness"},
	"personal_training": {"fitness", "strength"},
	"crossfit":          {"fitness", "strength", "functional"},
	"bootcamp":          {"fitness", "functional", "cardio"},
	"yoga":              {"mind_body", "health", "wellness"},
	"pilates":           {"mind_body", "strength", "wellness"},
	"barre":             {"mind_body", "dance"},
	"cycling":           {"cardio", "fitness"},
	"dance":             {"dance", "cardio"},
	"boxing":            {"combat", "cardio"},
	"kickboxing":        {"combat", "cardio"},
	"martial_arts":      {"combat"},
	"climbing":          {"sport", "strength"},
	"swimming":          {"sport", "cardio"},
	"sports_club":       {"sport", "fitness"},
}

// categoryAliases maps provider tags (Yelp aliases and titles, Google place
// types, Maps categories) onto vocabulary terms.
var categoryAliases = map[string]string{
	"gym":                     "gym",
	"gym and fitness":         "gym",
	"fitness":                 "fitness",
	"fitness center":          "fitness",
	"fitness centre":          "fitness",
	"fitness instruction":     "fitness",
	"fitness and instruction": "fitness",
	"health club":             "health_club",
	"healthclub":              "health_club",
	"personal trainer":        "personal_training",
	"personal training":       "personal_training",
	"trainer":                 "personal_training",
	"crossfit":                "crossfit",
	"crossfit gym":            "crossfit",
	"crossfit box":            "crossfit",
	"bootcamp":                "bootcamp",
	"boot camp":               "bootcamp",
	"hiit":                    "bootcamp",
	"intervaltraininggym":     "bootcamp",
	"circuittraininggym":      "bootcamp",
	"yoga":                    "yoga",
	"yoga studio":             "yoga",
	"hot yoga":                "yoga",
	"pilates":                 "pilates",
	"pilates studio":          "pilates",
	"barre":                   "barre",
	"barre class":             "barre",
	"barreclass":              "barre",
	"cycling":                 "cycling",
	"cycling class":           "cycling",
	"cyclingclass":            "cycling",
	"indoor cycling":          "cycling",
	"spin":                    "cycling",
	"spin class":              "cycling",
	"spinning":                "cycling",
	"dance":                   "dance",
	"dance studio":            "dance",
	"dancestudio":             "dance",
	"dance school":            "dance",
	"zumba":                   "dance",
	"boxing":                  "boxing",
	"boxing gym":              "boxing",
	"boxing club":             "boxing",
	"kickboxing":              "kickboxing",
	"martial art":             "martial_arts",
	"martial arts":            "martial_arts",
	"martialart":              "martial_arts",
	"martialarts":             "martial_arts",
	"martial arts school":     "martial_arts",
	"mma":                     "martial_arts",
	"karate":                  "martial_arts",
	"taekwondo":               "martial_arts",
	"jiu jitsu":               "martial_arts",
	"brazilian jiu jitsu":     "martial_arts",
	"judo":                    "martial_arts",
	"muay thai":               "martial_arts",
	"climbing":                "climbing",
	"rock climbing":           "climbing",
	"climbing gym":            "climbing",
	"bouldering":              "climbing",
	"swimming":                "swimming",
	"swimming pool":           "swimming",
	"swimmingpool":            "swimming",
	"swim":                    "swimming",
	"sports club":             "sports_club",
	"sports complex":          "sports_club",
	"athletic club":           "sports_club",
	"recreation center":       "sports_club",
}

const groupCredit = 0.5

var tagReplacer = strings.NewReplacer("_", " ", "-", " ", "&", " and ", "/", " ")

// VocabularyTerm maps a provider tag onto the fitness vocabulary.
func VocabularyTerm(tag string) (string, bool) {
	t := strings.Join(strings.Fields(tagReplacer.Replace(strings.ToLower(tag))), " ")
	if t == "" {
		return "", false
	}
	if term, ok := categoryAliases[t]; ok {
		return term, true
	}
	if strings.HasSuffix(t, "s") {
		if term, ok := categoryAliases[strings.TrimSuffix(t, "s")]; ok {
			return term, true
		}
	}
	return "", false
}

// CategoryAlignment is the Jaccard similarity of vocabulary terms, topped up
// by half the Jaccard similarity of their semantic groups.
func CategoryAlignment(a, b []string) (float64, bool) {
	ta, tb := vocabularyTerms(a), vocabularyTerms(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0, false
	}
	literal := jaccard(ta, tb)
	grouped := jaccard(groupsOf(ta), groupsOf(tb))
	return literal + (1-literal)*groupCredit*grouped, true
}

func vocabularyTerms(tags []string) map[string]bool {
	out := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if term, ok := VocabularyTerm(tag); ok {
			out[term] = true
		}
	}
	return out
}

func groupsOf(terms map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for t := range terms {
		for _, g := range categoryGroups[t] {
			out[g] = true
		}
	}
	return out
}

package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Taxonomy is the curated keyword database driving Telugu content
// classification. It is loaded once and treated as immutable; the
// classifier only reads from it.
type Taxonomy struct {
	// Major Tollywood actors (A-list).
	Actors []string `yaml:"actors"`
	// Major Tollywood actresses.
	Actresses []string `yaml:"actresses"`
	// Directors and producers.
	Directors []string `yaml:"directors"`
	// Current and recent movie titles. Needs periodic refresh.
	Movies []string `yaml:"movies"`
	// Highly anticipated releases that earn an extra confidence boost.
	Anticipated []string `yaml:"anticipated"`
	// Political leaders of Telangana and Andhra Pradesh.
	Politicians []string `yaml:"politicians"`
	// Geographic keywords: cities, districts, landmark localities.
	Places []string `yaml:"places"`
	// Political parties.
	Parties []string `yaml:"parties"`
	// Production houses and music labels.
	ProductionHouses []string `yaml:"production_houses"`
	// News channels and media outlets.
	MediaChannels []string `yaml:"media_channels"`
	// Sports keywords for the catch-all bucket.
	Sports []string `yaml:"sports"`
	// Business and tech keywords for the catch-all bucket.
	Business []string `yaml:"business"`
	// Cultural keywords for the catch-all bucket.
	Culture []string `yaml:"culture"`
}

// Default returns the built-in keyword database.
func Default() Taxonomy {
	return Taxonomy{
		Actors: []string{
			"prabhas", "mahesh babu", "allu arjun", "ram charan", "jr ntr", "ntr",
			"chiranjeevi", "pawan kalyan", "vijay deverakonda", "nani", "rana daggubati",
			"ravi teja", "naga chaitanya", "nagarjuna", "venkatesh", "balakrishna",
			"sai dharam tej", "varun tej", "sharwanand", "nithiin", "gopichand",
			"kalyan ram", "bellamkonda sreenivas", "sudheer babu", "adivi sesh",
		},
		Actresses: []string{
			"samantha", "rashmika mandanna", "pooja hegde", "kajal aggarwal",
			"anushka shetty", "tamannaah", "keerthy suresh", "rakul preet singh",
			"pragya jaiswal", "mehreen pirzada", "raashi khanna", "sai pallavi",
			"nivetha thomas", "regina cassandra", "lavanya tripathi", "hebah patel",
		},
		Directors: []string{
			"ss rajamouli", "rajamouli", "trivikram", "koratala siva", "sukumar",
			"vamshi paidipally", "harish shankar", "anil ravipudi", "boyapati sreenu",
			"krish jagarlamudi", "maruthi", "parasuram", "gopichand malineni",
			"srinu vaitla", "puri jagannadh", "vv vinayak", "dil raju", "allu aravind",
		},
		Movies: []string{
			"kalki 2898 ad", "devara", "pushpa 2", "rrr", "radhe shyam", "acharya",
			"liger", "godfather", "bheemla nayak", "sarkaru vaari paata", "major",
			"ante sundaraniki", "vikram", "kgf chapter 2", "beast", "jersey",
			"love story", "vakeel saab", "krack", "ala vaikunthapurramuloo",
			"sarileru neekevvaru", "disco raja", "world famous lover",
			"coolie", "war 2", "pushpa the rule", "game changer", "rc 16",
		},
		Anticipated: []string{
			"coolie", "war 2", "pushpa 2", "devara", "kalki 2898 ad",
		},
		Politicians: []string{
			"kcr", "k chandrashekar rao", "ktr", "k t rama rao", "revanth reddy",
			"jagan", "ys jagan", "chandrababu naidu", "pawan kalyan", "harish rao",
			"kavitha", "sabitha indra reddy", "etela rajender", "bandi sanjay",
			"kishan reddy", "asaduddin owaisi", "akbaruddin owaisi",
		},
		Places: []string{
			"hyderabad", "secunderabad", "warangal", "nizamabad", "karimnagar",
			"khammam", "telangana", "andhra pradesh", "vijayawada", "visakhapatnam",
			"tirupati", "guntur", "kurnool", "nellore", "chittoor", "kadapa",
			"anantapur", "srikakulam", "vizianagaram", "hitec city", "hitech city",
			"cyberabad", "gachibowli", "madhapur", "kondapur", "banjara hills",
			"jubilee hills", "film nagar", "annapurna studios", "ramoji film city",
		},
		Parties: []string{
			"trs", "brs", "tdp", "ysrcp", "janasena", "congress telangana",
			"bjp telangana", "mim", "aimim", "cpi", "cpm", "tjs",
		},
		ProductionHouses: []string{
			"mythri movie makers", "geetha arts", "sri venkateswara creations",
			"haarika hassine creations", "sithara entertainments", "aditya music",
			"lahari music", "sony music south", "anil sunkara", "dil raju productions",
		},
		MediaChannels: []string{
			"tv9 telugu", "ntv", "etv telugu", "greatandhra", "idream filmnagar",
			"eenadu", "sakshi", "andhra jyothy", "telangana today", "hans india",
			"123telugu", "gulte", "tupaki", "cinejosh", "mirchi9", "telugu cinema",
		},
		Sports: []string{
			"cricket", "ipl", "srh", "sunrisers hyderabad", "kabaddi", "badminton",
			"pv sindhu", "saina nehwal", "pullela gopichand", "sania mirza",
		},
		Business: []string{
			"startup", "technology", "hitec city", "hitech city", "cyberabad",
			"microsoft", "google", "amazon", "facebook", "infosys", "tcs",
			"pharma", "biocon", "dr reddy", "aurobindo", "hetero",
		},
		Culture: []string{
			"festival", "bonalu", "bathukamma", "dussehra", "ugadi", "sankranti",
			"food", "biryani", "hyderabadi", "telugu language", "heritage",
		},
	}
}

// LoadFile reads a taxonomy from a YAML file. Groups left empty in the file
// fall back to the built-in defaults, so a regional override file only
// needs to list what it changes.
func LoadFile(path string) (Taxonomy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("read taxonomy file: %w", err)
	}

	var tax Taxonomy
	if err := yaml.Unmarshal(raw, &tax); err != nil {
		return Taxonomy{}, fmt.Errorf("decode taxonomy file: %w", err)
	}

	def := Default()
	fillEmpty(&tax.Actors, def.Actors)
	fillEmpty(&tax.Actresses, def.Actresses)
	fillEmpty(&tax.Directors, def.Directors)
	fillEmpty(&tax.Movies, def.Movies)
	fillEmpty(&tax.Anticipated, def.Anticipated)
	fillEmpty(&tax.Politicians, def.Politicians)
	fillEmpty(&tax.Places, def.Places)
	fillEmpty(&tax.Parties, def.Parties)
	fillEmpty(&tax.ProductionHouses, def.ProductionHouses)
	fillEmpty(&tax.MediaChannels, def.MediaChannels)
	fillEmpty(&tax.Sports, def.Sports)
	fillEmpty(&tax.Business, def.Business)
	fillEmpty(&tax.Culture, def.Culture)
	return tax, nil
}

func fillEmpty(dst *[]string, def []string) {
	if len(*dst) == 0 {
		*dst = def
	}
}

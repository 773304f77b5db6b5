package models

import "github.com/tidwall/gjson"

// Person is a registered paddler.
type Person struct {
	RegNo     string `json:"reg_no"`
	FirstName string `json:"first_name"`
	Surname   string `json:"surname"`
	Male      bool   `json:"male"`
	BirthYear int    `json:"birth_year"`
	Club      string `json:"club"`
}

// DecodePerson validates a person payload.
func DecodePerson(data []byte) (Person, error) {
	var p Person
	err := p.UnmarshalJSON(data)
	return p, err
}

func (p *Person) UnmarshalJSON(data []byte) error {
	var errs errorList
	root, ok := parseRoot(data, &errs)
	if ok {
		if v, ok := readPerson(root, nil, &errs); ok {
			*p = v
		}
	}
	return errs.err("Person")
}

func readPerson(v gjson.Result, loc []string, errs *errorList) (Person, bool) {
	o, ok := asObject(v, loc, errs)
	if !ok {
		return Person{}, false
	}
	before := errs.len()
	var p Person
	if raw, ok := o.required("reg_no"); ok {
		p.RegNo, _ = readString(raw, o.at("reg_no"), errs)
	}
	if raw, ok := o.required("first_name"); ok {
		p.FirstName, _ = readString(raw, o.at("first_name"), errs)
	}
	if raw, ok := o.required("surname"); ok {
		p.Surname, _ = readString(raw, o.at("surname"), errs)
	}
	if raw, ok := o.required("male"); ok {
		p.Male, _ = readBool(raw, o.at("male"), errs)
	}
	if raw, ok := o.required("birth_year"); ok {
		n, _ := readInt(raw, o.at("birth_year"), errs)
		p.BirthYear = int(n)
	}
	if raw, ok := o.required("club"); ok {
		p.Club, _ = readString(raw, o.at("club"), errs)
	}
	o.close()
	return p, errs.len() == before
}

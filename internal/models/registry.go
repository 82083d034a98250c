package models

// All lists every table managed by AutoMigrate, parents before children.
func All() []interface{} {
	return []interface{}{
		&User{},
		&AuthTransaction{},
		&Appointment{},
		&Campaign{},
		&CaseStudy{},
		&Event{},
		&Resource{},
		&ResourceDownload{},
		&Service{},
		&Testimonial{},
		&Settings{},
		&Subscriber{},
	}
}

package domain

type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	Image       string `json:"image"`
}

// SampleCourse is the static lesson shown on the demo course page.
func SampleCourse() Course {
	return Course{
		ID:          "utm-101",
		Title:       "Informatics in Education",
		Category:    "General",
		Image:       "https://picsum.photos/seed/edu/800/400",
		Description: "Exploring the intersection of information technology and pedagogical strategies in the 21st century.",
		Content: "Higher education institutions are increasingly adopting digital learning ecosystems to facilitate flexible learning. " +
			"However, the complexity of academic language can often pose a barrier to students with cognitive disabilities or those learning in a second language. " +
			"This module examines how artificial intelligence, particularly Large Language Models, can be leveraged to simplify complex educational materials without losing core academic integrity. " +
			"We will look at practical implementations within the UTM framework and discuss the ethical implications of AI-assisted learning. " +
			"Key topics include universal design for learning (UDL), assistive technologies, and the role of human-centered design in educational software development.",
	}
}

// CourseContent is the derived, non-persisted lesson body currently displayed.
type CourseContent struct {
	Text       string   `json:"text"`
	Language   Language `json:"language"`
	Simplified bool     `json:"simplified"`
	Processing bool     `json:"processing"`
	Reading    bool     `json:"reading"`
}

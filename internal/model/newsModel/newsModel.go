package newsModel

type RawEverything struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
}

type Article struct {
	Source Source `json:"source"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	// parsed per article, some sources send it empty or malformed
	PublishedAt string `json:"publishedAt"`
}

type Source struct {
	Name string `json:"name"`
}

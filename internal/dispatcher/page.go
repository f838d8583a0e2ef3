package dispatcher

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"
)

// Element is the state of one element on the page.
type Element struct {
	Text   string        // visible text
	Value  string        // form field value
	HTML   template.HTML // markup produced by escaping templates
	Src    string        // image source
	Items  []string      // list entries
	Hidden bool
}

// Page is the rendering target the handlers write into. Every element named
// in ids.go exists from the start; article-display starts hidden.
type Page struct {
	mu       sync.Mutex
	elements map[string]*Element
}

func NewPage() *Page {
	p := &Page{elements: make(map[string]*Element, len(elementIDs))}
	for _, id := range elementIDs {
		p.elements[id] = &Element{}
	}
	p.elements[ArticleDisplay].Hidden = true
	return p
}

func (p *Page) el(id string) *Element {
	e, ok := p.elements[id]
	if !ok {
		panic(fmt.Sprintf("dispatcher: unknown element %q", id))
	}
	return e
}

// Element returns a copy of the element's state.
func (p *Page) Element(id string) Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	e := *p.el(id)
	e.Items = append([]string(nil), e.Items...)
	return e
}

func (p *Page) SetValue(id, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.el(id).Value = value
}

func (p *Page) Value(id string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.el(id).Value
}

func (p *Page) Text(id string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.el(id).Text
}

// update applies fn to the page under the lock.
func (p *Page) update(fn func(get func(id string) *Element)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.el)
}

var articleTextTmpl = template.Must(template.New("article-text").Parse(
	`<strong>{{.Title}}</strong><br><br><strong>Date:</strong> {{.Date}}<br><br>{{.Text}}`))

// renderArticleText returns the escaped markup for article-text and the text
// a reader sees when it is displayed.
func renderArticleText(title, date, text string) (template.HTML, string, error) {
	var b strings.Builder
	err := articleTextTmpl.Execute(&b, struct{ Title, Date, Text string }{title, date, text})
	if err != nil {
		return "", "", err
	}
	visible := title + "\n\nDate: " + date + "\n\n" + text
	return template.HTML(b.String()), visible, nil
}

var pageTmpl = template.Must(template.New("page").Parse(`<section>
  <input id="scrape-url" value="{{(index . "scrape-url").Value}}">
  <button id="scrape-btn">Scrape</button>
  <p id="scrape-status">{{(index . "scrape-status").Text}}</p>
  <ul id="scraped-urls">{{range (index . "scraped-urls").Items}}
    <li>{{.}}</li>{{end}}
  </ul>
</section>
<section>
  <input id="fetch-url" value="{{(index . "fetch-url").Value}}">
  <button id="fetch-btn">Fetch</button>
  <div id="article-display"{{if (index . "article-display").Hidden}} style="display: none"{{end}}>
    <h2 id="article-title">{{(index . "article-title").Text}}</h2>
    <p id="article-date">{{(index . "article-date").Text}}</p>
    <img id="article-image" src="{{(index . "article-image").Src}}">
    <div id="article-text">{{(index . "article-text").HTML}}</div>
    <button id="summarize-btn">Summarize</button>
    <textarea id="article-summary">{{(index . "article-summary").Value}}</textarea>
  </div>
</section>
`))

// Render writes the page as HTML. All text is escaped by html/template.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	snapshot := make(map[string]Element, len(p.elements))
	for id, e := range p.elements {
		snapshot[id] = *e
	}
	p.mu.Unlock()
	return pageTmpl.Execute(w, snapshot)
}

// RenderText writes what a reader of the page would see, for terminals.
func (p *Page) RenderText(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	if s := p.el(ScrapeStatus).Text; s != "" {
		b.WriteString(s + "\n")
	}
	for _, u := range p.el(ScrapedURLs).Items {
		b.WriteString("  - " + u + "\n")
	}
	if !p.el(ArticleDisplay).Hidden {
		b.WriteString(p.el(ArticleText).Text + "\n")
		if src := p.el(ArticleImage).Src; src != "" {
			b.WriteString("\nImage: " + src + "\n")
		}
		if s := p.el(ArticleSummary).Value; s != "" {
			b.WriteString("\nSummary: " + s + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

package voicexml

import (
	"encoding/xml"
	"fmt"
)

const ContentType = "application/xml"

type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type Gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	Timeout       int      `xml:"timeout,attr,omitempty"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
	Prompt        *Say     `xml:",omitempty"`
}

type Dial struct {
	XMLName xml.Name `xml:"Dial"`
	Number  string   `xml:",chardata"`
}

type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

// Response is an ordered list of verbs rendered inside <Response>.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
	voice   string
}

func New(voice string) *Response {
	return &Response{voice: voice}
}

func (r *Response) Say(text string) *Response {
	r.Verbs = append(r.Verbs, &Say{Voice: r.voice, Text: text})
	return r
}

// Gather asks for speech and posts the result to action. A non-empty prompt is
// spoken while listening.
func (r *Response) Gather(action string, timeoutSeconds int, prompt string) *Response {
	g := &Gather{
		Input:         "speech",
		Action:        action,
		Method:        "POST",
		Timeout:       timeoutSeconds,
		SpeechTimeout: "auto",
	}
	if prompt != "" {
		g.Prompt = &Say{Voice: r.voice, Text: prompt}
	}
	r.Verbs = append(r.Verbs, g)
	return r
}

func (r *Response) Dial(number string) *Response {
	r.Verbs = append(r.Verbs, &Dial{Number: number})
	return r
}

func (r *Response) Redirect(url string) *Response {
	r.Verbs = append(r.Verbs, &Redirect{Method: "POST", URL: url})
	return r
}

func (r *Response) Hangup() *Response {
	r.Verbs = append(r.Verbs, &Hangup{})
	return r
}

func (r *Response) Render() ([]byte, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("render voice response: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

package entities

// Browser names accepted by Open Browser
const (
	BrowserChrome   = "chrome"
	BrowserChromium = "chromium"
	BrowserFirefox  = "firefox"
	BrowserWebKit   = "webkit"
)

// BrowserOptions configures the browser launched by Open Browser
type BrowserOptions struct {
	Browser  string `json:"browser"`
	Headless bool   `json:"headless"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// ClickOptions configures a click
type ClickOptions struct {
	Button     string `json:"button,omitempty"` // left, right, middle
	ClickCount int    `json:"click_count,omitempty"`
}

// ElementState is a state Wait For Elements State can wait for
type ElementState string

const (
	ElementAttached ElementState = "attached"
	ElementDetached ElementState = "detached"
	ElementVisible  ElementState = "visible"
	ElementHidden   ElementState = "hidden"
)

// Cookie represents a browser cookie
type Cookie struct {
	Name     string  `json:"name" yaml:"name"`
	Value    string  `json:"value" yaml:"value"`
	URL      string  `json:"url,omitempty" yaml:"url,omitempty"`
	Domain   string  `json:"domain,omitempty" yaml:"domain,omitempty"`
	Path     string  `json:"path,omitempty" yaml:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty" yaml:"expires,omitempty"` // unix seconds
	HTTPOnly bool    `json:"httpOnly,omitempty" yaml:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty" yaml:"secure,omitempty"`
	SameSite string  `json:"sameSite,omitempty" yaml:"sameSite,omitempty"` // Strict, Lax or None
}

package islet

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	bindingSelector = "[data-ui]"

	codeBlockSelector = "pre"
	copyButtonClass   = "copy-button"
	copyLabel         = "Copy"
	copyDone          = "Copied!"
	copyFailed        = "Failed"

	// copyFeedbackDuration is how long the button shows feedback before
	// reverting to its label.
	copyFeedbackDuration = 2 * time.Second
)

// BindingRuntime is the narrow interface to the optional declarative-UI
// runtime. The controller works without one: when HasRuntime reports
// false, binding re-initialization is skipped entirely.
type BindingRuntime interface {
	HasRuntime() bool
	InitTree(el *Element) error
}

// Clipboard abstracts clipboard access for the copy-code affordance.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// reinitialize re-activates behavior inside freshly inserted markup:
// declarative-UI bindings for every element carrying a data-ui attribute,
// and a copy button on every code block that lacks one.
func (c *Controller) reinitialize(ctx context.Context, root *Element) {
	if c.Runtime != nil && c.Runtime.HasRuntime() {
		for _, el := range root.QuerySelectorAll(bindingSelector) {
			if err := c.Runtime.InitTree(el); err != nil {
				c.Logger.Warn("binding init failed",
					zap.String("tag", el.Tag()),
					zap.Error(err))
			}
		}
	}

	for _, pre := range root.QuerySelectorAll(codeBlockSelector) {
		c.attachCopyButton(pre)
	}
}

// attachCopyButton adds the copy affordance to a code block. Idempotent:
// blocks that already carry one are skipped.
func (c *Controller) attachCopyButton(pre *Element) {
	if pre.QuerySelector("."+copyButtonClass) != nil {
		return
	}

	btn := c.doc.CreateElement("button")
	btn.SetAttr("class", copyButtonClass)
	btn.SetAttr("type", "button")
	btn.SetText(copyLabel)

	btn.OnClick(func(ctx context.Context) error {
		text := pre.Text()
		if code := pre.QuerySelector("code"); code != nil {
			text = code.Text()
		}

		feedback := copyDone
		if err := c.writeClipboard(ctx, text); err != nil {
			c.Logger.Warn("clipboard write failed", zap.Error(err))
			feedback = copyFailed
		}
		btn.SetText(feedback)
		c.after(copyFeedbackDuration, func() {
			btn.SetText(copyLabel)
		})
		return nil
	})

	pre.AppendChild(btn)
}

func (c *Controller) writeClipboard(ctx context.Context, text string) error {
	if c.Clipboard == nil {
		return errNoClipboard
	}
	return c.Clipboard.WriteText(ctx, text)
}

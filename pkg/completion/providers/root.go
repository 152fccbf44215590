package providers

// RootProvider offers the global objects a bare output can start with.
type RootProvider struct {
	objects []string
}

func NewRootProvider(objects []string) *RootProvider {
	return &RootProvider{objects: objects}
}

func (p *RootProvider) GetCompletions() []CompletionCandidate {
	completions := make([]CompletionCandidate, 0, len(p.objects))
	for _, name := range p.objects {
		completions = append(completions, CompletionCandidate{
			Label:      name,
			InsertText: name,
			Kind:       KindVariable,
			Detail:     "Liquid object",
		})
	}
	return completions
}

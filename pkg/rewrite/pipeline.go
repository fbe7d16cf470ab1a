package rewrite

// Hit is the number of rewrites a rule performed during a run.
type Hit struct {
	Rule  string
	Count int
}

// Result is the outcome of running a pipeline over one text.
type Result struct {
	Text    string
	Changed bool
	Hits    []Hit
	Flags   []Flag
}

// Total returns the number of rewrites across all rules.
func (r *Result) Total() int {
	total := 0
	for _, h := range r.Hits {
		total += h.Count
	}
	return total
}

// Pipeline applies an ordered list of rules; each rule sees the text
// produced by the rules before it.
type Pipeline struct {
	name  string
	rules []Rule
}

// NewPipeline returns a pipeline running rules in the given order.
func NewPipeline(name string, rules ...Rule) *Pipeline {
	return &Pipeline{name: name, rules: rules}
}

// Name identifies the pipeline in logs and reports.
func (p *Pipeline) Name() string {
	return p.name
}

// Append adds rules at the end of the pipeline.
func (p *Pipeline) Append(rules ...Rule) *Pipeline {
	p.rules = append(p.rules, rules...)
	return p
}

// Rules returns the rules in execution order.
func (p *Pipeline) Rules() []Rule {
	return p.rules
}

// Run rewrites text, which was read from path.
func (p *Pipeline) Run(path, text string) *Result {
	ctx := NewContext(path)
	out := text
	var hits []Hit
	for _, rule := range p.rules {
		ctx.current = rule.Name()
		next, n := rule.Apply(ctx, out)
		if n > 0 {
			ctx.hits[rule.Name()] += n
			hits = append(hits, Hit{Rule: rule.Name(), Count: n})
		}
		out = next
	}
	return &Result{
		Text:    out,
		Changed: out != text,
		Hits:    hits,
		Flags:   ctx.Flags(),
	}
}

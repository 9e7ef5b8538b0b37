// Package templates holds the hand-written templ components for the
// Superstore Saga page. The page is a static narrative shell; every chart
// section populates itself through the Datastar SSE endpoints on load.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Dashboard renders the full documentary page.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}
		if _, err := io.WriteString(w, sidebar); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<main class="content">`); err != nil {
			return err
		}
		for _, section := range sections {
			if err := section.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main>`+pageFoot)
		return err
	})
}

// act is a narrative section: heading, an optional self-loading chart
// region, and the commentary shown beneath it.
func act(heading, loadPath, contentID, insights string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<section class="act">%s`, heading); err != nil {
			return err
		}
		if loadPath != "" {
			if _, err := fmt.Fprintf(w,
				`<div id="%s" data-on-load="@get('%s')"><div class="loading">Loading…</div></div>`,
				contentID, loadPath); err != nil {
				return err
			}
		}
		if insights != "" {
			if _, err := fmt.Fprintf(w, `<div class="insights">%s</div>`, insights); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

var sections = []templ.Component{
	act(`<h1>Welcome to the Superstore Saga</h1><h2>A Data Visualization Documentary</h2>
<p>This interactive dashboard takes you on a journey through the Superstore's performance data.
Through a series of compelling visualizations, we'll uncover the stories hidden in the numbers
and reveal insights that can drive business success.</p>`, "", "", ""),

	act(`<h1>Act 1: Understanding Our Core Metrics</h1>
<h2>The Distribution of Sales and Profits</h2>`,
		"/sse/distributions", "distributions-content",
		`<strong>Key Insights:</strong>
<ul>
<li>Most sales transactions fall in the lower range</li>
<li>Several high-value outliers indicate significant large purchases</li>
<li>Profit distribution shows both gains and losses</li>
<li>Some concerning negative profit outliers require attention</li>
</ul>`),

	act(`<h1>Act 2: Exploring Relationships</h1>
<h2>The Sales-Profit Dynamic</h2>`,
		"/sse/scatter", "scatter-content",
		`<strong>Key Insights:</strong>
<ul>
<li>Strong positive correlation between sales and profits</li>
<li>Some high-sales items show unexpectedly low profits</li>
<li>Outliers suggest areas for pricing strategy review</li>
</ul>`),

	act(`<h2>Regional Performance Analysis</h2>`,
		"/sse/region-margins", "regions-content",
		`<strong>Key Insights:</strong>
<ul>
<li>Significant variation in regional performance</li>
<li>Some regions consistently outperform others</li>
<li>Presence of outliers in all regions</li>
</ul>`),

	act(`<h2>The Strategic Opportunities Matrix</h2>
<p>Sales against profit margin, bubble size by absolute profit, one panel per region.</p>`,
		"/sse/matrix", "matrix-content",
		`<strong>Key Insights:</strong>
<ul>
<li>High-sales, high-margin quadrants mark the products to protect</li>
<li>High-sales, low-margin items are pricing opportunities</li>
<li>Regional panels expose where the same product mix behaves differently</li>
</ul>`),

	act(`<h2>Category Performance Deep Dive</h2>`,
		"/sse/category-metrics", "category-content",
		`<strong>Key Insights:</strong>
<ul>
<li>Each category shows distinct performance characteristics</li>
<li>Size of bubbles reveals efficiency in profit generation</li>
<li>Clear leaders and laggards in overall performance</li>
</ul>`),

	act(`<h1>Act 3: The Complex Interplay</h1>
<h2>Temporal Performance by Category</h2>`,
		"/sse/monthly-sales", "monthly-content",
		`<strong>Key Insights:</strong>
<ul>
<li>Clear seasonal patterns in sales across categories</li>
<li>Different growth trajectories for each category</li>
<li>Intersection points reveal competitive dynamics</li>
</ul>`),

	act(`<h2>The Complete Record</h2>
<p>The raw transactions behind every chart above, exactly as loaded.</p>`,
		"/sse/transactions", "transactions-content", ""),

	act(`<h1>Final Act: The Path Forward</h1>
<p><strong>Successes to build upon:</strong> technology margins hold up across regions, and
high-value transactions generally keep good profit margins.</p>
<p><strong>Challenges to address:</strong> high-discount items often lead to negative profits,
and regional variations suggest supply chain inefficiencies.</p>
<p>Remember: every data point tells a story. Your actions write the next chapter.</p>`,
		"", "", ""),
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Superstore Saga</title>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body{margin:0;font-family:system-ui,sans-serif;display:flex;background:#fafafa;color:#1e3d59}
.sidebar{width:240px;min-height:100vh;background:#1e3d59;color:#fff;padding:24px}
.sidebar hr{border-color:#4b8f8c}
.content{flex:1;max-width:960px;padding:32px}
.act{margin-bottom:48px}
.insights{background:#fff;border-left:4px solid #4b8f8c;padding:12px 16px;margin-top:16px}
.modern-table{width:100%;border-collapse:collapse;background:#fff}
.modern-table th,.modern-table td{padding:8px 12px;border-bottom:1px solid #e0e0e0;text-align:left}
.category-badge{background:#4b8f8c;color:#fff;border-radius:4px;padding:2px 8px;font-size:0.85em}
.loading{color:#999;padding:24px;text-align:center}
.table-note{color:#999;font-size:0.85em}
</style>
</head>
<body>`

const sidebar = `<nav class="sidebar">
<h1>Superstore Saga</h1>
<p>A Data Visualization Documentary</p>
<hr>
<p>Explore the dramatic story of sales and profits through interactive visualizations.</p>
</nav>`

const pageFoot = `</body>
</html>`

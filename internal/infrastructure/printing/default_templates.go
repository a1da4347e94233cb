package printing

// DefaultSheetTemplate is the production sheet handed to the kitchen: job
// parameters, the full cost breakdown, the shopping list and totals.
const DefaultSheetTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Production sheet - {{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; margin: 24px; }
h1 { font-size: 18px; margin-bottom: 4px; }
table { width: 100%; border-collapse: collapse; margin-top: 12px; }
th, td { border-bottom: 1px solid #ddd; padding: 4px 6px; text-align: left; }
td.num, th.num { text-align: right; }
tr.shortfall td { color: #b00020; }
.totals td { font-weight: bold; }
.meta span { margin-right: 16px; }
</style>
</head>
<body>
<h1>{{title .Title}}</h1>
<div class="meta">
<span>Profile: {{.Profile}}</span>
<span>Size: {{formatQty .Job.Size}}</span>
<span>Layers: {{.Job.Layers}}</span>
<span>Quantity: {{.Job.Quantity}}</span>
<span>Baking time: {{formatQty .BakingMinutes}} min</span>
{{- if .FillingName}}
<span>Filling: {{title .FillingName}}</span>
{{- end}}
{{- if not .GeneratedAt.IsZero}}
<span>Generated: {{formatDateTime .GeneratedAt}}</span>
{{- end}}
</div>

<h2>Materials and costs</h2>
<table class="lines">
<thead>
<tr><th>Item</th><th>Type</th><th class="num">Required</th><th>Unit</th><th class="num">In stock</th><th class="num">Shortfall</th><th class="num">Cost to bake</th><th class="num">Cost to restock</th></tr>
</thead>
<tbody>
{{- range .Lines}}
<tr{{if isPositive .Shortfall}} class="shortfall"{{end}}>
<td>{{title .Name}}</td><td>{{.Type}}</td><td class="num">{{formatQty .RequiredAmount}}</td><td>{{.Unit.Code}}</td><td class="num">{{formatQty .Stock}}</td><td class="num">{{formatQty .Shortfall}}</td><td class="num">{{formatMoney .CostToBake $.Currency}}</td><td class="num">{{formatMoney .CostToRestock $.Currency}}</td>
</tr>
{{- end}}
</tbody>
</table>

<h2>Shopping list</h2>
{{- if .ShoppingList}}
<table class="shopping">
<thead><tr><th>Item</th><th class="num">Buy</th><th>Unit</th><th class="num">Estimated cost</th></tr></thead>
<tbody>
{{- range .ShoppingList}}
<tr><td>{{title .Name}}</td><td class="num">{{formatQty .Shortfall}}</td><td>{{.Unit.Code}}</td><td class="num">{{formatMoney .CostToRestock $.Currency}}</td></tr>
{{- end}}
</tbody>
</table>
{{- else}}
<p class="in-stock">Everything is in stock.</p>
{{- end}}

<table class="totals">
<tr><td>Total cost to bake</td><td class="num">{{formatMoney .TotalCostToBake .Currency}}</td></tr>
<tr><td>Total restock cost</td><td class="num">{{formatMoney .TotalRestockCost .Currency}}</td></tr>
<tr><td>Sale price</td><td class="num">{{formatMoney .SalePrice .Currency}}</td></tr>
<tr><td>Profit</td><td class="num">{{formatMoney .TotalProfit .Currency}}{{if isNegative .TotalProfit}} (loss){{end}}</td></tr>
<tr><td>Margin</td><td class="num">{{formatPercent .Margin 1}}</td></tr>
</table>
</body>
</html>
`

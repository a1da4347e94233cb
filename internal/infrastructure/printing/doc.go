// Package printing renders costed jobs into printable HTML production
// sheets for the kitchen.
//
// Example usage:
//
//	engine := NewTemplateEngine()
//	sheets, err := NewSheetRenderer(engine)
//	if err != nil {
//	    return err
//	}
//	html, err := sheets.Render(ctx, SheetData{
//	    Title:   "Vanilla sponge",
//	    Profile: "default",
//	    Job:     job,
//	    Summary: summary,
//	})
package printing

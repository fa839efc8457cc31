package mcpserver

// FixtureFormatContract describes the artwork and workshop fixture files
// that LLM consumers should follow when drafting catalog entries.
const FixtureFormatContract = `# Designa Fixture Format Contract

The site catalog lives in two JSON files in the fixture directory. Both are
re-read on change; an invalid file is rejected and the previous catalog stays live.

## artworks.json

A JSON array of artworks.

` + "```" + `json
[
  {
    "id": 1,                                  // REQUIRED – unique integer
    "title": "Ember Knight",                  // REQUIRED
    "type": "Character",                      // REQUIRED – string or {"name": "...", "id": 3}
    "image": "/static/img/ember.jpg",         // REQUIRED – primary image
    "description": "Hero concept for ...",
    "tags": ["fantasy", "armor"],
    "date": "2024-05",
    "software": ["Photoshop", "Blender"],     // drives the software filter
    "style": "Painterly",
    "client": "Studio Name",
    "length": "3 weeks",
    "scope": "Concept to turnaround",
    "artstationLink": "https://www.artstation.com/artwork/...",
    "subImages": ["/static/img/ember-sketch.jpg"]
  }
]
` + "```" + `

## workshops.json

An object with the filter categories and the workshops.

` + "```" + `json
{
  "categories": [
    {"id": "concept-art", "label": "Characters", "color": "#44BBA4", "colorTo": "#2E8B7A"}
  ],
  "workshops": [
    {
      "id": 1,                                 // REQUIRED – unique integer
      "title": "Character Sheets",
      "slug": "character-sheets",              // REQUIRED – unique, used in URLs
      "dateRange": "2030-04-10 to 2030-04-12", // REQUIRED – YYYY-MM-DD to YYYY-MM-DD
      "type": "concept-art",                   // a category id
      "level": "beginner",                     // beginner | intermediate | advanced
      "skills": ["Anatomy", "Silhouette"],
      "price": "$120",
      "seats": 12,
      "description": "Three evenings of ..."
    }
  ]
}
` + "```" + `

## Rules

1. Ids are unique within their file; workshop slugs are unique and non-empty.
2. The end of a date range is not before its start.
3. A workshop counts as upcoming when it starts after the current calendar day.
4. Image paths are absolute URL paths (served under ` + "`" + `/static/` + "`" + `) or full URLs.
5. Files are UTF-8 JSON without comments; the comments above are annotations only.
6. Validate a draft with the ` + "`" + `validate_fixtures` + "`" + ` tool before publishing it.
`

package organizer

import "github.com/user/linkfind/internal/db"

var sourceStyles = map[string]db.FolderStyle{
	"ChatGPT":        {Icon: "💬", Color: "#10A37F"},
	"YouTube":        {Icon: "🎥", Color: "#FF0000"},
	"GitHub":         {Icon: "💻", Color: "#1F2937"},
	"Medium":         {Icon: "📝", Color: "#00AB6C"},
	"Stack Overflow": {Icon: "💡", Color: "#F48024"},
	"GeeksforGeeks":  {Icon: "🤓", Color: "#2F8D46"},
	"W3Schools":      {Icon: "📘", Color: "#04AA6D"},
	"MDN":            {Icon: "🦖", Color: "#83D0F2"},
	"LeetCode":       {Icon: "🧩", Color: "#FFA116"},
	"HackerRank":     {Icon: "👨‍💻", Color: "#00EA64"},
	"CodePen":        {Icon: "✏️", Color: "#000000"},
	"Dev.to":         {Icon: "📰", Color: "#0A0A0A"},
	"Reddit":         {Icon: "🔴", Color: "#FF4500"},
	"Twitter":        {Icon: "🐦", Color: "#1DA1F2"},
	"Onlinegdb":      {Icon: "⚙️", Color: "#3B82F6"},
	"Other":          {Icon: "🔗", Color: "#6B7280"},
}

var categoryStyles = map[string]db.FolderStyle{
	"Operating Systems":       {Icon: "🖥️", Color: "#0078D4"},
	"Computer Networks":       {Icon: "🌐", Color: "#2196F3"},
	"Data Structures":         {Icon: "🔢", Color: "#9C27B0"},
	"Database Management":     {Icon: "🗄️", Color: "#14B8A6"},
	"Artificial Intelligence": {Icon: "🤖", Color: "#8B5CF6"},
	"React":                   {Icon: "⚛️", Color: "#61DAFB"},
	"JavaScript":              {Icon: "📜", Color: "#F7DF1E"},
	"Python":                  {Icon: "🐍", Color: "#3776AB"},
	"Java":                    {Icon: "☕", Color: "#007396"},
	"C Programming":           {Icon: "©️", Color: "#A8B9CC"},
	"C++":                     {Icon: "➕", Color: "#00599C"},
	"Web Development":         {Icon: "🌍", Color: "#10B981"},
	"DevOps":                  {Icon: "🔧", Color: "#F59E0B"},
	"Mobile Development":      {Icon: "📱", Color: "#06B6D4"},
	"Cyber Security":          {Icon: "🔒", Color: "#EF4444"},
	"Cloud Computing":         {Icon: "☁️", Color: "#4285F4"},
	"Software Engineering":    {Icon: "⚙️", Color: "#6366F1"},
	"Blockchain":              {Icon: "⛓️", Color: "#F2A900"},
	"Programming Tools":       {Icon: "🛠️"},
	"Development Tools":       {Icon: "🔨"},
	"Interview Preparation":   {Icon: "📝", Color: "#10B981"},
	"Salesforce":              {Icon: "☁️", Color: "#00A1E0"},
	"Career & Jobs":           {Icon: "💼", Color: "#7C3AED"},
	"General":                 {Icon: "📂"},
}

// sourceStyle returns the style for a main folder. Unknown platforms share
// the "Other" look.
func sourceStyle(source string) db.FolderStyle {
	if s, ok := sourceStyles[source]; ok {
		return s
	}
	return sourceStyles["Other"]
}

// categoryStyle returns the style for a sub-folder; the store fills in
// defaults for anything left empty.
func categoryStyle(category string) db.FolderStyle {
	return categoryStyles[category]
}

package cli

import "os"

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}

func readFile(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(content)
}

package service

import "fmt"

// EnrichCVEPrompt CVE 技术解读的提示词
func EnrichCVEPrompt(cveID, description string) string {
	return fmt.Sprintf("Enrich CVE %s:\nDescription: %s\n"+
		"Provide detailed technical explanation, causes, examples, and mitigation steps.",
		cveID, description)
}

// SimplifyCVEPrompt CVE 通俗解释的提示词
func SimplifyCVEPrompt(cveID, description string) string {
	return fmt.Sprintf("Explain CVE %s in simple non-technical terms for someone with no cybersecurity background.\n"+
		"Description: %s\nUse analogies and concrete examples.",
		cveID, description)
}

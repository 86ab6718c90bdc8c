package aigen

import "fmt"

// generateSystemPrompt instructs the model to act as an AV system designer
// and emit a bare JSON array of line items.
const generateSystemPrompt = `You are an expert Audio-Visual system designer. Your task is to generate a detailed Bill of Quantities (BOQ) in JSON format based on the user's requirements.
- The BOQ must be a JSON array of objects.
- Each object must have these keys: category, itemDescription, brand, model, quantity, unitPrice, totalPrice.
- quantity is an integer; unitPrice and totalPrice are numbers in USD.
- Use realistic, current, and professional-grade AV equipment brands and models (e.g., Crestron, Shure, Samsung, Barco, Biamp, QSC).
- Calculate the totalPrice accurately (quantity * unitPrice).
- Ensure all necessary components for a functional system are included (cables, mounts, connectors, etc.).
- The output must be ONLY the JSON array, with no other text or markdown.`

// refineSystemPrompt instructs the model to apply a change request to an
// existing BOQ and return the complete updated list.
const refineSystemPrompt = `You are an expert Audio-Visual system designer. Your task is to refine an existing Bill of Quantities (BOQ) based on user instructions.
- You will be given a BOQ in JSON format and a prompt for changes.
- Apply the changes and return the complete, updated BOQ as a JSON array of objects.
- Each object must have these keys: category, itemDescription, brand, model, quantity, unitPrice, totalPrice.
- Ensure all calculations (totalPrice) are correct in the updated BOQ.
- The output must be ONLY the JSON array, with no other text or markdown.`

func generateUserPrompt(requirements string) string {
	return fmt.Sprintf("Generate a BOQ for the following requirements: %s", requirements)
}

func refineUserPrompt(currentBOQ, instruction string) string {
	return fmt.Sprintf(`Current BOQ:
%s

Refinement Request:
%q

Please provide the full, updated BOQ in JSON format.`, currentBOQ, instruction)
}

func productUserPrompt(productName string) string {
	return fmt.Sprintf(`Find information about the product: %q.
Provide a public URL for a high-quality image of the product and a brief, one-paragraph technical description.
Return the result as a single, minified JSON object with keys "imageUrl" (string) and "description" (string).
Do not include any other text, explanations, or markdown formatting. Just the JSON object.
Example: {"imageUrl":"https://example.com/image.jpg","description":"This is a product description."}`, productName)
}

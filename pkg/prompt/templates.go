package prompt

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/rsum/pkg/utils"
)

const (
	memorySystem = "You are an advanced AI language model with the ability to keep track of dialog information between speakers."

	memoryInstruction = "You are an advanced AI language model with the ability to store and update a memory to keep track of key personality information for both the user and the system. You will receive a previous memory and a dialogue context. Your goal is to update the memory by incorporating the new personality information while ensuring that the memory does not exceed 20 sentences."

	taggedMemoryInstruction = `You are an advanced AI language model with the ability to store and update a memory to keep track of key personality information for both the user and the system. You will receive a previous memory and a dialogue context. Your goal is to update the memory by incorporating the new information while ensuring that the memory does not exceed 20 sentences.

Analyze the [Dialogue Context] and extract facts.
Format each fact as: **[TAG] Fact content (Quote: "exact phrase from dialogue")**

**Allowed Tags:**
1. **[PLAN]** (Future / Intentions)
   - Use for future events, intentions, or wishes.
   - **Ex:** "I'm going to buy a new laptop next week." -> **[PLAN]** Plans to buy a laptop.
   - **Ex:** "I want to visit Japan someday." -> **[PLAN]** Wants to visit Japan.
   - **Anti-Ex:** "I am typing on my laptop." -> **[ACTION]** (Current activity).

2. **[ACTION]** (Current Session / Specific Past Event)
   - Use for specific actions done *during* or *immediately before* this conversation.
   - **Ex:** "I just finished my lunch." -> **[ACTION]** Finished lunch.
   - **Ex:** "I am reading a book right now." -> **[ACTION]** Is reading a book.
   - **Anti-Ex:** "I read books every night." -> **[FACT]** (Habit/Routine).

3. **[PREFERENCE]** (Explicit Likes/Dislikes)
   - Use ONLY if there is a clear **emotional verb** (love, hate, enjoy, prefer).
   - **Ex:** "I absolutely love spicy food." -> **[PREFERENCE]** Loves spicy food.
   - **Ex:** "I hate rainy days." -> **[PREFERENCE]** Hates rainy days.
   - **Anti-Ex:** "I eat spicy food often." -> **[FACT]** (Habit, emotion not stated).

4. **[FACT]** (Attributes / Habits / Biography)
   - Use for static truths, job, origin, habits, or general abilities.
   - **Ex:** "I work as a nurse in Seoul." -> **[FACT]** Works as a nurse in Seoul.
   - **Ex:** "I read books every night." -> **[FACT]** Reads books every night.
   - **Anti-Ex:** "I will start a new job in March." -> **[PLAN]** (Future event).`

	deltaSystem = "You are an AI analyzer. Your task is to compare a 'Previous Memory' with a 'New Memory' and extract *only* the facts that are NEW or MODIFIED in the 'New Memory'. Facts that are simply carried over (unchanged) should be ignored."

	questionsSystem = "You are an AI assistant. Given a list of facts, generate a set of simple, verifiable questions to check if these facts are true."

	factCheckSystem = "You are an AI fact-checker. Verify the question based *strictly* on the provided [Context]. Provide exact quotes."

	factCheckRules = `[Instruction]
Answer based *strictly* on the context.
1. **Logic Check:** Do not conflate two different people's attributes.
2. **State Check:** Distinguish between past origin and current status.
3. **Nuance Check:** Distinguish between "ability" (can do) and "interest" (likes to watch/read).
4. **No Inference:** Do not assume unstated preferences based on facts.
5. **(CRITICAL) Provide a direct quote.**

[Few-Shot Examples (Domain-Agnostic)]

Example 1 (Origin vs Residence - Logic: Past != Current):
Context: User: "I grew up in Texas, but I've been living in Tokyo for 5 years."
Question: Does the user live in Texas?
Answer: No, the user is *from* Texas but currently *lives* in Tokyo.
Quote: "grew up in Texas... living in Tokyo"

Example 2 (Entity Binding - Logic: Speaker A's action != Speaker B's location):
Context: User: "I'm eating a burger." Assistant: "Delicious! I'm reading a book in the library."
Question: Is the user eating a burger in the library?
Answer: No. The User is eating a burger, but the location "library" applies to the Assistant.
Quote: "User: ...eating a burger", "Assistant: ...in the library"

Example 3 (Ability vs Interest - Logic: Cannot do != Dislike):
Context: Assistant: "I can't play the guitar, but I love listening to rock music."
Question: Is the assistant uninterested in guitars?
Answer: No. She lacks the ability to play (can't play), but she has an interest in the music (loves listening).
Quote: "can't play... love listening"

Example 4 (Fact vs Inference - Logic: Possession != Profession/Hobby):
Context: Assistant: "I own a vintage Ferrari."
Question: Is the assistant a professional racing driver?
Answer: Not mentioned. Owning a car does not imply being a professional driver.
Quote: "own a vintage Ferrari"

Example 5 (Plan vs Fact - Logic: Future != Present):
Context: User: "I plan to study French next year, currently I speak Spanish."
Question: Does the user speak French?
Answer: No, speaking French is a future plan. Currently, they speak Spanish.
Quote: "plan to study... next year"

Example 6 (Selection Nuance - Logic: A or B != A and B):
Context: User: "I'll buy either the red shirt or the blue one."
Question: Is the user buying both shirts?
Answer: No, the user is choosing between the two ("either... or"), not buying both.
Quote: "either the red shirt or the blue one"

Example 7 (External Knowledge - Logic: General != Specific):
Context: User: "I work at a tech company in Silicon Valley."
Question: Does the user work for Google?
Answer: Not mentioned. The context says "a tech company", it does not specify "Google".
Quote: "work at a tech company"

[Answer]
`

	reconcileSystem = "You are an AI memory editor. Your task is to correct and polish the [Draft Memory] based on the [Verification Results]."

	responseSystem = "You are an advanced AI language model designed to engage in personality-based conversations."

	responseInstruction = "You are an advanced AI designed for engaging in natural, personality-based conversations. You will be provided with a memory, containing the personal preferences and experiences of speakers (the assistant and the user), as well as a dialogue context. When responding, consider maintaining a conversational and fluent tone. Responses should be contextually relevant, consistent with given memory, aiming to keep the conversation flowing. Human queries are labeled 'User:', while your replies are marked 'Assistant:'. Your goal is to provide engaging and coherent responses based on the dialogue context provided."
)

// MemoryDraft renders the stage 1 prompt that folds one session into the
// previous memory.
func MemoryDraft(style DraftStyle, prev, session string, ordinal int) Prompt {
	instruction := memoryInstruction
	if style == DraftTagged {
		instruction = taggedMemoryInstruction
	}

	return Prompt{
		Stage:  StageDraft,
		Task:   fmt.Sprintf("Memory Generation (S%d)", ordinal),
		System: memorySystem,
		User: fmt.Sprintf("**Instruction** %s\n\n**Test** [Previous Memory] %s [Dialogue Context] %s [Updated Memory]",
			instruction, orNone(prev), session),
	}
}

// MemoryDiff renders the stage 2 prompt that isolates new or modified facts.
func MemoryDiff(prev, draft string) Prompt {
	user := fmt.Sprintf(`
[Previous Memory]
%s

[New Memory]
%s

[Instruction]
List all facts that are NEWLY ADDED or SIGNIFICANTLY MODIFIED in the '[New Memory]'.
- If no new or modified facts are found, output the exact string "%s".
- Focus only on the delta (the changes).

[New or Modified Facts]
`, orNone(prev), draft, NoChanges)

	return Prompt{
		Stage:  StageDelta,
		Task:   "Memory Diff Generation",
		System: deltaSystem,
		User:   user,
	}
}

// VerificationQuestions renders the stage 3 prompt that turns delta facts
// into one question per line.
func VerificationQuestions(delta string) Prompt {
	user := fmt.Sprintf(`
[Facts to Verify]
%s

[Instruction]
Generate a list of verification questions based *only* on the facts provided above.
- Each question should be on a new line.
- Do NOT use hyphens or numbers.

[Verification Questions]
`, delta)

	return Prompt{
		Stage:  StageQuestions,
		Task:   "Question Generation (Diff)",
		System: questionsSystem,
		User:   user,
	}
}

// FactCheck renders the stage 4 prompt for a single question. The context is
// the raw text of the current session and nothing else.
func FactCheck(sessionText, question string) Prompt {
	user := fmt.Sprintf("\n[Context]\n%s\n\n[Question]\n%s\n\n%s", sessionText, question, factCheckRules)

	return Prompt{
		Stage:  StageVerify,
		Task:   fmt.Sprintf("Fact Verification (Q: %s...)", utils.Prefix(question, 40)),
		System: factCheckSystem,
		User:   user,
	}
}

// QA is one verified question and its answer.
type QA struct {
	Question string
	Answer   string
}

// Reconcile renders the stage 5 prompt that corrects the draft against the
// verification results. An empty result list still renders a valid prompt.
func Reconcile(draft string, results []QA) Prompt {
	var pairs strings.Builder
	for _, qa := range results {
		fmt.Fprintf(&pairs, "Q: %s\nA: %s\n\n", qa.Question, qa.Answer)
	}

	user := fmt.Sprintf(`
[Draft Memory]
%s

[Verification Results (Fact-Check)]
%s

[Instruction]
Refine the [Draft Memory] to create the [Final Verified Memory].
1. **Correction:** If the [Verification Results] contradict any statement in the draft, **rewrite or remove** that statement in the draft. (Trust the Verification Results).
2. **Garbage Collection:** Remove any [PLAN] or [INTENTION] from the draft that is clearly outdated or completed based on the context.
3. **Constraint:** Ensure the final output is a concise list (under 20 sentences).

[Final Verified Memory]
`, draft, pairs.String())

	return Prompt{
		Stage:  StageReconcile,
		Task:   "Final Memory Reconstruction",
		System: reconcileSystem,
		User:   user,
	}
}

// Response renders the final prompt that answers the current dialogue context
// using the last memory.
func Response(memory, context string) Prompt {
	return Prompt{
		Stage:  StageResponse,
		Task:   "Final Response Generation",
		System: responseSystem,
		User: fmt.Sprintf("**Instruction** %s\n\n**Test** [Previous Memory] %s [Dialogue Context] %s [Response] \n",
			responseInstruction, orNone(memory), context),
	}
}

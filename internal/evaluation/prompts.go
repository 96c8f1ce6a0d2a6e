package evaluation

const judgeSystemPrompt = `You are an expert data labeler grading the answers of a database question-answering assistant.
Respond with a single JSON object and nothing else:
{"reasoning": "<one or two sentences>", "score": true or false}`

const correctnessPrompt = `Evaluate the output for correctness.

<Rubric>
A correct answer:
- Provides accurate and complete information
- Contains no factual errors
- Addresses all parts of the question
- Is logically consistent

Penalize:
- Factual errors, wrong numbers or wrong rankings
- Incomplete or partial answers
- Misleading or ambiguous statements
</Rubric>

<Instructions>
- Carefully read the input and output
- Compare facts and numbers against the reference output; small rounding differences are fine
- Focus on correctness of information rather than style, language or verbosity
</Instructions>

<input>
%s
</input>

<output>
%s
</output>

Use the reference output below to evaluate the correctness of the response:
<reference_outputs>
%s
</reference_outputs>`

const helpfulnessPrompt = `Evaluate the output for helpfulness.

<Rubric>
A helpful answer:
- Clearly addresses the user's question
- Stays on topic and gives the information the question asks for
- Is specific rather than generic
- Is understandable to the person who asked

Penalize:
- Answers that miss the point of the question
- Refusals or vague statements when a concrete answer was possible
- Irrelevant details that bury the answer
</Rubric>

<Instructions>
- Judge only how well the output addresses the input; you have no reference answer
- Do not penalize the answer for being in the same language as the question
</Instructions>

<input>
%s
</input>

<output>
%s
</output>`
